package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
)

var notificationColumns = []string{
	"id", "recipient_id", "sender_id", "type", "title", "message",
	"related_session_id", "read", "created_at", "read_at",
}

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications
		(id, recipient_id, sender_id, type, title, message, related_session_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.SenderID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedSessionID,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting notification: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID string, page repositories.NotificationPage) ([]domain.Notification, error) {
	qb := psq.Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC")
	if page.UnreadOnly {
		qb = qb.Where(sq.Eq{"read": false})
	}
	if page.Limit > 0 {
		qb = qb.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		qb = qb.Offset(uint64(page.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building notification query: %v", errors.ErrStore, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing notifications: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title,
			&n.Message, &n.RelatedSessionID, &n.Read, &n.CreatedAt, &n.ReadAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning notification: %v", errors.ErrStore, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating notifications: %v", errors.ErrStore, err)
	}
	return notifications, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting unread notifications: %v", errors.ErrStore, err)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, recipientID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, read_at = now()
		WHERE id = $1 AND recipient_id = $2 AND read = FALSE
	`, id, recipientID)
	if err != nil {
		return fmt.Errorf("%w: marking notification read: %v", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: marking notification read: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, read_at = now()
		WHERE recipient_id = $1 AND read = FALSE
	`, recipientID)
	if err != nil {
		return fmt.Errorf("%w: marking notifications read: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *NotificationStore) Delete(ctx context.Context, id, recipientID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("%w: deleting notification: %v", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting notification: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}
