package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaming-hub/contract"
	"gaming-hub/domain"
	"gaming-hub/domain/event"
	"gaming-hub/errors"
	"gaming-hub/moderation"
	"gaming-hub/notify"
	"gaming-hub/observability"
	"gaming-hub/realtime"
	"gaming-hub/repositories"
)

type IMessageService interface {
	SendDirect(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error)
	SendSession(ctx context.Context, senderID, sessionID, content string) (*domain.Message, error)
	Conversation(ctx context.Context, viewerID, otherID string, page repositories.MessagePage) ([]domain.Message, error)
	SessionMessages(ctx context.Context, viewerID, sessionID string, page repositories.MessagePage) ([]domain.Message, error)
	MarkConversationRead(ctx context.Context, viewerID, otherID string) error
}

// MessageService persists chat, direct and session-scoped. Content goes
// through the moderation censor before it is stored or pushed, so an
// offensive word never reaches the store or a live connection. Live delivery
// is best effort; the stored row is the source of truth.
type MessageService struct {
	log        *slog.Logger
	messages   repositories.IMessageRepository
	sessions   repositories.ISessionRepository
	dispatcher notify.IDispatcher
	presence   contract.PresenceRegistry
	router     contract.Router
	moderator  *moderation.Moderator
	monitor    *observability.Monitor
	maxContent int
}

func NewMessageService(log *slog.Logger, messages repositories.IMessageRepository,
	sessions repositories.ISessionRepository, dispatcher notify.IDispatcher,
	presence contract.PresenceRegistry, router contract.Router,
	moderator *moderation.Moderator, monitor *observability.Monitor,
	maxContent int) *MessageService {
	return &MessageService{
		log:        log,
		messages:   messages,
		sessions:   sessions,
		dispatcher: dispatcher,
		presence:   presence,
		router:     router,
		moderator:  moderator,
		monitor:    monitor,
		maxContent: maxContent,
	}
}

// SendDirect stores a censored direct message and pushes message:received to
// the recipient's private topic. A recipient with no live connection gets a
// durable new_message notification instead.
func (s *MessageService) SendDirect(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", errors.ErrValidation)
	}
	content, err := s.clean(content)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Type:        domain.MessageDirect,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	s.monitor.IncrMessagesSent()

	if len(s.presence.LiveConnections(recipientID)) == 0 {
		if err := s.dispatcher.Dispatch(ctx, notify.Event{
			Type:         domain.NotificationNewMessage,
			SenderID:     senderID,
			RecipientIDs: []string{recipientID},
			Title:        "New message",
			Message:      content,
		}); err != nil {
			s.log.Warn("new message notification incomplete", "recipient_id", recipientID, "err", err)
		}
		return message, nil
	}

	s.push(event.MessageReceived, realtime.UserTopic(recipientID), message)
	return message, nil
}

// SendSession stores a censored session message and pushes it to the session
// topic. Only the host and listed participants may post.
func (s *MessageService) SendSession(ctx context.Context, senderID, sessionID, content string) (*domain.Message, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != senderID && !session.HasParticipant(senderID) {
		return nil, fmt.Errorf("%w: not a member of this session", errors.ErrForbidden)
	}
	content, err = s.clean(content)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		SessionID: sessionID,
		Content:   content,
		Type:      domain.MessageSession,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	s.monitor.IncrMessagesSent()

	s.push(event.SessionMessageReceived, realtime.SessionTopic(sessionID), message)
	return message, nil
}

func (s *MessageService) Conversation(ctx context.Context, viewerID, otherID string, page repositories.MessagePage) ([]domain.Message, error) {
	return s.messages.Conversation(ctx, viewerID, otherID, page)
}

func (s *MessageService) SessionMessages(ctx context.Context, viewerID, sessionID string, page repositories.MessagePage) ([]domain.Message, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(viewerID) {
		return nil, fmt.Errorf("%w: private session", errors.ErrForbidden)
	}
	return s.messages.SessionMessages(ctx, sessionID, page)
}

// MarkConversationRead flags every message the other user sent to the viewer.
func (s *MessageService) MarkConversationRead(ctx context.Context, viewerID, otherID string) error {
	return s.messages.MarkConversationRead(ctx, otherID, viewerID)
}

// clean validates and censors the raw content.
func (s *MessageService) clean(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty message", errors.ErrValidation)
	}
	if s.maxContent > 0 && len([]rune(content)) > s.maxContent {
		return "", fmt.Errorf("%w: message exceeds %d characters", errors.ErrValidation, s.maxContent)
	}

	censored, matched := s.moderator.Censor(content)
	if len(matched) > 0 {
		s.log.Debug("message content censored", "words", len(matched))
	}
	return censored, nil
}

// push encodes and publishes a live event. Failures are logged only; the
// message is already durable.
func (s *MessageService) push(name, topic string, message *domain.Message) {
	payload, err := event.Encode(name, message)
	if err != nil {
		s.log.Error("failed to encode message event", "message_id", message.ID, "err", err)
		return
	}
	s.router.Publish(topic, payload)
}
