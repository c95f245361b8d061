// Package postgres implements the repository interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const pqUniqueViolation = "23505"

var sessionColumns = []string{
	"id", "title", "game", "platform", "host_id", "max_participants",
	"scheduled_at", "duration_minutes", "description", "status",
	"is_private", "created_at",
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions
		(id, title, game, platform, host_id, max_participants, scheduled_at, duration_minutes, description, status, is_private, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Title,
		session.Game,
		session.Platform,
		session.HostID,
		session.MaxParticipants,
		session.ScheduledAt,
		session.Duration,
		session.Description,
		session.Status,
		session.IsPrivate,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting session: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query, args, err := psq.Select(sessionColumns...).
		From("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building session query: %v", errors.ErrStore, err)
	}

	session, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading session: %v", errors.ErrStore, err)
	}

	participants, err := s.participants(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	session.Participants = participants[id]
	return session, nil
}

func (s *SessionStore) List(ctx context.Context, filter repositories.SessionFilter) ([]domain.Session, error) {
	qb := psq.Select(sessionColumns...).
		From("sessions").
		OrderBy("scheduled_at ASC")

	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Platform != "" {
		qb = qb.Where(sq.Eq{"platform": filter.Platform})
	}
	if filter.Game != "" {
		qb = qb.Where(sq.ILike{"game": "%" + filter.Game + "%"})
	}
	// Private sessions are visible only to their host and participants.
	qb = qb.Where(sq.Or{
		sq.Eq{"is_private": false},
		sq.Eq{"host_id": filter.ViewerID},
		sq.Expr("id IN (SELECT session_id FROM session_participants WHERE user_id = ?)", filter.ViewerID),
	})

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building session list query: %v", errors.ErrStore, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	var sessions []domain.Session
	var ids []string
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", errors.ErrStore, err)
		}
		sessions = append(sessions, *session)
		ids = append(ids, session.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sessions: %v", errors.ErrStore, err)
	}

	if len(ids) == 0 {
		return sessions, nil
	}
	participants, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Participants = participants[sessions[i].ID]
	}
	return sessions, nil
}

// AddParticipant runs the capacity check and the insert as one conditional
// statement: the row is only written while the count of slot-holding
// participants stays below the session's capacity. Zero rows affected means
// the session was full at statement time.
func (s *SessionStore) AddParticipant(ctx context.Context, sessionID string, p domain.Participant) error {
	query := `
		INSERT INTO session_participants (session_id, user_id, status, joined_at)
		SELECT $1, $2, $3, $4
		WHERE (
			SELECT count(*) FROM session_participants
			WHERE session_id = $1 AND status <> 'declined'
		) < (SELECT max_participants FROM sessions WHERE id = $1)
	`
	res, err := s.db.ExecContext(ctx, query, sessionID, p.UserID, p.Status, p.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return errors.ErrAlreadyJoined
		}
		return fmt.Errorf("%w: adding participant: %v", errors.ErrStore, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: adding participant: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrSessionFull
	}
	return nil
}

// UpdateParticipantAndSessionStatus writes the participant's status and the
// session's derived status inside one transaction. Either both rows change or
// neither does.
func (s *SessionStore) UpdateParticipantAndSessionStatus(ctx context.Context, sessionID, userID string,
	status domain.ParticipantStatus, sessionStatus domain.SessionStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", errors.ErrStore, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE session_participants SET status = $1 WHERE session_id = $2 AND user_id = $3`,
		status, sessionID, userID)
	if err != nil {
		return fmt.Errorf("%w: updating participant: %v", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating participant: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = $1 WHERE id = $2`, sessionStatus, sessionID); err != nil {
		return fmt.Errorf("%w: updating session status: %v", errors.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing participant update: %v", errors.ErrStore, err)
	}
	return nil
}

// Delete removes the session; participants follow through the cascade.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("%w: deleting session: %v", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting session: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// participants loads the participant lists for the given session ids, keyed
// by session id and ordered by join time.
func (s *SessionStore) participants(ctx context.Context, ids []string) (map[string][]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, status, joined_at
		FROM session_participants
		WHERE session_id = ANY($1)
		ORDER BY joined_at ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: loading participants: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Participant, len(ids))
	for rows.Next() {
		var sessionID string
		var p domain.Participant
		if err := rows.Scan(&sessionID, &p.UserID, &p.Status, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning participant: %v", errors.ErrStore, err)
		}
		out[sessionID] = append(out[sessionID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating participants: %v", errors.ErrStore, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.Game,
		&session.Platform,
		&session.HostID,
		&session.MaxParticipants,
		&session.ScheduledAt,
		&session.Duration,
		&session.Description,
		&session.Status,
		&session.IsPrivate,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
