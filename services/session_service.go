package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/notify"
	"gaming-hub/repositories"
)

type CreateSessionParams struct {
	Title           string          `json:"title" validate:"required,max=120"`
	Game            string          `json:"game" validate:"required,max=120"`
	Platform        domain.Platform `json:"platform" validate:"required"`
	ScheduledAt     time.Time       `json:"scheduledAt" validate:"required"`
	MaxParticipants int             `json:"maxParticipants" validate:"omitempty,min=1,max=64"`
	Duration        int             `json:"duration" validate:"omitempty,min=1"`
	Description     string          `json:"description" validate:"max=2000"`
	IsPrivate       bool            `json:"isPrivate"`
}

const (
	defaultMaxParticipants = 4
	defaultDurationMinutes = 120
)

type ISessionService interface {
	Create(ctx context.Context, hostID string, params CreateSessionParams) (*domain.Session, error)
	Get(ctx context.Context, sessionID, viewerID string) (*domain.Session, error)
	List(ctx context.Context, viewerID string, filter repositories.SessionFilter) ([]domain.Session, error)
	Join(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	UpdateParticipantStatus(ctx context.Context, sessionID, actorID, participantID string, status domain.ParticipantStatus) (*domain.Session, error)
	Delete(ctx context.Context, sessionID, actorID string) error
}

// SessionService owns the session entity's invariants: creation, join
// admission control, participant status transitions, and host-authorized
// deletion. Mutations on the same session id run inside a per-id critical
// section; the store additionally applies the capacity check and the
// participant insert as one conditional statement, so no interleaving of
// concurrent joins can push the confirmed count above capacity.
type SessionService struct {
	log        *slog.Logger
	sessions   repositories.ISessionRepository
	dispatcher notify.IDispatcher
	validate   *validator.Validate
	locks      *keyedMutex
}

func NewSessionService(log *slog.Logger, sessions repositories.ISessionRepository,
	dispatcher notify.IDispatcher) *SessionService {
	return &SessionService{
		log:        log,
		sessions:   sessions,
		dispatcher: dispatcher,
		validate:   validator.New(),
		locks:      newKeyedMutex(),
	}
}

// Create validates the parameters and persists a new open session owned by
// hostID. The host is not listed as a participant. Validation failures are
// rejected before any mutation.
func (s *SessionService) Create(ctx context.Context, hostID string, params CreateSessionParams) (*domain.Session, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if !params.Platform.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", errors.ErrValidation, params.Platform)
	}

	if params.MaxParticipants == 0 {
		params.MaxParticipants = defaultMaxParticipants
	}
	if params.Duration == 0 {
		params.Duration = defaultDurationMinutes
	}

	session := &domain.Session{
		ID:              uuid.NewString(),
		Title:           params.Title,
		Game:            params.Game,
		Platform:        params.Platform,
		HostID:          hostID,
		MaxParticipants: params.MaxParticipants,
		ScheduledAt:     params.ScheduledAt,
		Duration:        params.Duration,
		Description:     params.Description,
		Status:          domain.SessionOpen,
		IsPrivate:       params.IsPrivate,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("session created", "session_id", session.ID, "host_id", hostID, "game", session.Game)
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID, viewerID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(viewerID) {
		return nil, fmt.Errorf("%w: private session", errors.ErrForbidden)
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, viewerID string, filter repositories.SessionFilter) ([]domain.Session, error) {
	filter.ViewerID = viewerID
	return s.sessions.List(ctx, filter)
}

// Join appends userID as a pending participant. The capacity check and the
// append are atomic with respect to other joins on the same session id.
// The host receives a session_invite notification after the commit; its
// delivery never affects the join outcome.
func (s *SessionService) Join(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := s.join(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	// Notification delivery happens outside the critical section.
	s.notify(ctx, notify.Event{
		Type:         domain.NotificationSessionInvite,
		SenderID:     userID,
		RecipientIDs: []string{session.HostID},
		Title:        "New join request",
		Message:      fmt.Sprintf("Someone wants to join your session %q", session.Title),
		SessionID:    session.ID,
	})
	return session, nil
}

func (s *SessionService) join(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID == userID || session.HasParticipant(userID) {
		return nil, errors.ErrAlreadyJoined
	}
	if session.Status.Terminal() || session.ActiveCount() >= session.MaxParticipants {
		return nil, errors.ErrSessionFull
	}

	participant := domain.Participant{
		UserID:   userID,
		Status:   domain.ParticipantPending,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.sessions.AddParticipant(ctx, sessionID, participant); err != nil {
		return nil, err
	}
	session.Participants = append(session.Participants, participant)
	return session, nil
}

// UpdateParticipantStatus is host-only. It recomputes the session status:
// full once the confirmed count reaches capacity, back to open when a
// confirmed participant steps away below capacity. The participant receives
// a session_accepted or session_declined notification.
func (s *SessionService) UpdateParticipantStatus(ctx context.Context, sessionID, actorID, participantID string, status domain.ParticipantStatus) (*domain.Session, error) {
	if status != domain.ParticipantConfirmed && status != domain.ParticipantDeclined {
		return nil, fmt.Errorf("%w: participant status must be confirmed or declined", errors.ErrValidation)
	}

	session, err := s.updateParticipant(ctx, sessionID, actorID, participantID, status)
	if err != nil {
		return nil, err
	}

	evt := notify.Event{
		SenderID:     actorID,
		RecipientIDs: []string{participantID},
		SessionID:    session.ID,
	}
	if status == domain.ParticipantConfirmed {
		evt.Type = domain.NotificationSessionAccepted
		evt.Title = "Request accepted"
		evt.Message = fmt.Sprintf("Your request for %q was accepted", session.Title)
	} else {
		evt.Type = domain.NotificationSessionDeclined
		evt.Title = "Request declined"
		evt.Message = fmt.Sprintf("Your request for %q was declined", session.Title)
	}
	s.notify(ctx, evt)
	return session, nil
}

func (s *SessionService) updateParticipant(ctx context.Context, sessionID, actorID, participantID string, status domain.ParticipantStatus) (*domain.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != actorID {
		return nil, fmt.Errorf("%w: only the host can update participants", errors.ErrForbidden)
	}
	participant := session.Participant(participantID)
	if participant == nil {
		return nil, fmt.Errorf("%w: participant", errors.ErrNotFound)
	}
	if status == domain.ParticipantConfirmed && participant.Status != domain.ParticipantConfirmed &&
		session.ConfirmedCount() >= session.MaxParticipants {
		return nil, errors.ErrSessionFull
	}

	previous := session.Status
	previousParticipant := participant.Status
	participant.Status = status
	session.DeriveStatus()

	// Both rows go through one store call so a failure cannot leave the
	// participant updated while the derived status stays stale.
	if err := s.sessions.UpdateParticipantAndSessionStatus(ctx, sessionID, participantID, status, session.Status); err != nil {
		participant.Status, session.Status = previousParticipant, previous
		return nil, err
	}
	if session.Status != previous {
		s.log.Info("session status changed",
			"session_id", sessionID,
			"from", previous,
			"to", session.Status)
	}
	return session, nil
}

// Delete is host-only and terminal. Every participant existing at call time
// gets a session_cancelled notification persisted before the entity is
// removed; the host is excluded. Failure to reach one recipient never
// blocks the others.
func (s *SessionService) Delete(ctx context.Context, sessionID, actorID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HostID != actorID {
		return fmt.Errorf("%w: only the host can delete the session", errors.ErrForbidden)
	}

	recipients := make([]string, 0, len(session.Participants))
	for _, p := range session.Participants {
		recipients = append(recipients, p.UserID)
	}
	if len(recipients) > 0 {
		// Persisted before removal; the live push inside dispatch is a
		// non-blocking queue write, not a network round trip.
		s.notify(ctx, notify.Event{
			Type:         domain.NotificationSessionCancelled,
			SenderID:     actorID,
			RecipientIDs: recipients,
			Title:        "Session cancelled",
			Message:      fmt.Sprintf("The session %q was cancelled", session.Title),
			SessionID:    session.ID,
		})
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("session deleted", "session_id", sessionID, "host_id", actorID, "participants", len(recipients))
	return nil
}

// notify dispatches and logs; the triggering action's outcome is already
// decided by the store, so dispatch errors are not escalated.
func (s *SessionService) notify(ctx context.Context, evt notify.Event) {
	if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		s.log.Warn("notification dispatch incomplete", "type", evt.Type, "err", err)
	}
}
