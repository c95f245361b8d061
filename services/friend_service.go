package services

import (
	"context"
	"fmt"
	"log/slog"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/notify"
	"gaming-hub/repositories"
)

type IFriendService interface {
	SendRequest(ctx context.Context, fromID, toID string) error
	AcceptRequest(ctx context.Context, userID, fromID string) error
	Search(ctx context.Context, filter repositories.UserFilter) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// FriendService manages directed friend requests and their acceptance into a
// symmetric friendship. Both sides of the handshake produce a durable
// notification for the other party.
type FriendService struct {
	log        *slog.Logger
	users      repositories.IUserRepository
	dispatcher notify.IDispatcher
}

func NewFriendService(log *slog.Logger, users repositories.IUserRepository,
	dispatcher notify.IDispatcher) *FriendService {
	return &FriendService{log: log, users: users, dispatcher: dispatcher}
}

// SendRequest records a pending request from fromID to toID and notifies the
// target. Requesting yourself, an existing friend or the same target twice
// is rejected.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: cannot befriend yourself", errors.ErrValidation)
	}
	if _, err := s.users.Get(ctx, toID); err != nil {
		return err
	}

	friends, err := s.users.AreFriends(ctx, fromID, toID)
	if err != nil {
		return err
	}
	if friends {
		return errors.ErrAlreadyFriends
	}

	if err := s.users.CreateFriendRequest(ctx, fromID, toID); err != nil {
		return err
	}
	s.log.Info("friend request created", "from_id", fromID, "to_id", toID)

	s.notify(ctx, notify.Event{
		Type:         domain.NotificationFriendRequest,
		SenderID:     fromID,
		RecipientIDs: []string{toID},
		Title:        "New friend request",
		Message:      "Someone wants to be your friend",
	})
	return nil
}

// AcceptRequest turns the pending request from fromID into a friendship and
// notifies the original requester.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, fromID string) error {
	if err := s.users.AcceptFriendRequest(ctx, userID, fromID); err != nil {
		return err
	}
	s.log.Info("friend request accepted", "user_id", userID, "from_id", fromID)

	s.notify(ctx, notify.Event{
		Type:         domain.NotificationFriendAccepted,
		SenderID:     userID,
		RecipientIDs: []string{fromID},
		Title:        "Friend request accepted",
		Message:      "Your friend request was accepted",
	})
	return nil
}

func (s *FriendService) Search(ctx context.Context, filter repositories.UserFilter) ([]domain.User, error) {
	return s.users.Search(ctx, filter)
}

func (s *FriendService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *FriendService) notify(ctx context.Context, evt notify.Event) {
	if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		s.log.Warn("notification dispatch incomplete", "type", evt.Type, "err", err)
	}
}
