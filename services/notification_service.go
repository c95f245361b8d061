package services

import (
	"context"
	"log/slog"

	"gaming-hub/domain"
	"gaming-hub/repositories"
)

type INotificationService interface {
	List(ctx context.Context, recipientID string, page repositories.NotificationPage) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, id, recipientID string) error
}

// NotificationService is the read/acknowledge side of the notification
// store. Every operation carries the recipient id so the repository can keep
// users inside their own inbox.
type NotificationService struct {
	log           *slog.Logger
	notifications repositories.INotificationRepository
}

func NewNotificationService(log *slog.Logger, notifications repositories.INotificationRepository) *NotificationService {
	return &NotificationService{log: log, notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, recipientID string, page repositories.NotificationPage) ([]domain.Notification, error) {
	if page.Limit <= 0 || page.Limit > 100 {
		page.Limit = 50
	}
	return s.notifications.ListByRecipient(ctx, recipientID, page)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.notifications.UnreadCount(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.notifications.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, id, recipientID string) error {
	if err := s.notifications.Delete(ctx, id, recipientID); err != nil {
		return err
	}
	s.log.Debug("notification deleted", "notification_id", id, "recipient_id", recipientID)
	return nil
}
