package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
)

var profileColumns = []string{
	"id", "username", "name", "platforms", "games", "online",
	"current_activity", "created_at",
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, name, password_hash, platforms, games, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.Name, passwordHash,
		pq.Array(lo.Map(user.Platforms, func(p domain.Platform, _ int) string { return string(p) })),
		pq.Array(user.Games), user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return errors.ErrUsernameTaken
		}
		return fmt.Errorf("%w: inserting profile: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *UserStore) CredentialsByUsername(ctx context.Context, username string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM profiles WHERE username = $1`, username).
		Scan(&id, &hash)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", "", errors.ErrNotFound
		}
		return "", "", fmt.Errorf("%w: reading credentials: %v", errors.ErrStore, err)
	}
	return id, hash, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	query, args, err := psq.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building profile query: %v", errors.ErrStore, err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading profile: %v", errors.ErrStore, err)
	}

	user.FriendIDs, err = s.friendIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) Search(ctx context.Context, filter repositories.UserFilter) ([]domain.User, error) {
	qb := psq.Select(profileColumns...).
		From("profiles").
		OrderBy("username ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"username": pattern},
			sq.ILike{"name": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM unnest(games) AS g WHERE g ILIKE ?)", pattern),
		})
	}
	if filter.Platform != "" {
		qb = qb.Where(sq.Expr("? = ANY(platforms)", filter.Platform))
	}
	if filter.Online != nil {
		qb = qb.Where(sq.Eq{"online": *filter.Online})
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building profile search: %v", errors.ErrStore, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: searching profiles: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning profile: %v", errors.ErrStore, err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating profiles: %v", errors.ErrStore, err)
	}
	return users, nil
}

func (s *UserStore) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	a, b := orderPair(userA, userB)
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friends WHERE user_a = $1 AND user_b = $2)`,
		a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking friendship: %v", errors.ErrStore, err)
	}
	return exists, nil
}

func (s *UserStore) CreateFriendRequest(ctx context.Context, fromID, toID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friend_requests (id, from_id, to_id) VALUES ($1, $2, $3)`,
		uuid.NewString(), fromID, toID)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return errors.ErrAlreadyRequested
		}
		return fmt.Errorf("%w: inserting friend request: %v", errors.ErrStore, err)
	}
	return nil
}

// AcceptFriendRequest consumes the pending request and records the symmetric
// friendship inside one transaction.
func (s *UserStore) AcceptFriendRequest(ctx context.Context, userID, fromID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", errors.ErrStore, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE from_id = $1 AND to_id = $2`, fromID, userID)
	if err != nil {
		return fmt.Errorf("%w: consuming friend request: %v", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: consuming friend request: %v", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrNotFound
	}

	a, b := orderPair(userID, fromID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO friends (user_a, user_b) VALUES ($1, $2) ON CONFLICT DO NOTHING`, a, b)
	if err != nil {
		return fmt.Errorf("%w: recording friendship: %v", errors.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing friendship: %v", errors.ErrStore, err)
	}
	return nil
}

func (s *UserStore) friendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_a, user_b FROM friends WHERE user_a = $1 OR user_b = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading friends: %v", errors.ErrStore, err)
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("%w: scanning friendship: %v", errors.ErrStore, err)
		}
		if a == userID {
			friends = append(friends, b)
		} else {
			friends = append(friends, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating friendships: %v", errors.ErrStore, err)
	}
	return friends, nil
}

// orderPair normalizes a friendship pair to the stored (user_a < user_b) form.
func orderPair(x, y string) (string, string) {
	if x < y {
		return x, y
	}
	return y, x
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var platforms pq.StringArray
	var games pq.StringArray
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&platforms,
		&games,
		&user.Online,
		&user.CurrentActivity,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Platforms = lo.Map(platforms, func(p string, _ int) domain.Platform {
		return domain.Platform(p)
	})
	user.Games = games
	return &user, nil
}
