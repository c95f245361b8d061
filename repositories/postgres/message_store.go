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

var messageColumns = []string{
	"id", "sender_id", "recipient_id", "session_id", "content", "type",
	"read", "created_at", "read_at",
}

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages
		(id, sender_id, recipient_id, session_id, content, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID,
		m.SenderID,
		m.RecipientID,
		m.SessionID,
		m.Content,
		m.Type,
		m.Read,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting message: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *MessageStore) Conversation(ctx context.Context, userA, userB string, page repositories.MessagePage) ([]domain.Message, error) {
	qb := psq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"type": domain.MessageDirect}).
		Where(sq.Or{
			sq.And{sq.Eq{"sender_id": userA}, sq.Eq{"recipient_id": userB}},
			sq.And{sq.Eq{"sender_id": userB}, sq.Eq{"recipient_id": userA}},
		}).
		OrderBy("created_at ASC")
	return s.query(ctx, paginate(qb, page))
}

func (s *MessageStore) SessionMessages(ctx context.Context, sessionID string, page repositories.MessagePage) ([]domain.Message, error) {
	qb := psq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"type": domain.MessageSession, "session_id": sessionID}).
		OrderBy("created_at ASC")
	return s.query(ctx, paginate(qb, page))
}

func (s *MessageStore) MarkConversationRead(ctx context.Context, senderID, recipientID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read = TRUE, read_at = now()
		WHERE sender_id = $1 AND recipient_id = $2 AND read = FALSE
	`, senderID, recipientID)
	if err != nil {
		return fmt.Errorf("%w: marking conversation read: %v", errors.ErrStore, err)
	}
	return nil
}

func paginate(qb sq.SelectBuilder, page repositories.MessagePage) sq.SelectBuilder {
	if page.Limit > 0 {
		qb = qb.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		qb = qb.Offset(uint64(page.Offset))
	}
	return qb
}

func (s *MessageStore) query(ctx context.Context, qb sq.SelectBuilder) ([]domain.Message, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building message query: %v", errors.ErrStore, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing messages: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.SessionID,
			&m.Content, &m.Type, &m.Read, &m.CreatedAt, &m.ReadAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning message: %v", errors.ErrStore, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating messages: %v", errors.ErrStore, err)
	}
	return messages, nil
}
