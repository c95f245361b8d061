//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"context"

	"gaming-hub/domain"
)

type NotificationPage struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type INotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, page NotificationPage) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	// MarkRead and Delete are scoped to the recipient so a user can never
	// touch another user's notifications. Both return errors.ErrNotFound
	// when nothing matched.
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, id, recipientID string) error
}
