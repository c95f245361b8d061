//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"

	"gaming-hub/domain"
)

type UserFilter struct {
	Search   string // matches username, name or games
	Platform string
	Online   *bool
	Limit    int
}

type IUserRepository interface {
	// Create inserts a new profile with its password hash. Returns
	// errors.ErrUsernameTaken when the username is already registered.
	Create(ctx context.Context, user *domain.User, passwordHash string) error
	// CredentialsByUsername returns the profile id and stored password hash.
	// Returns errors.ErrNotFound when the username is unknown.
	CredentialsByUsername(ctx context.Context, username string) (string, string, error)

	// Get returns errors.ErrNotFound when no profile has that id.
	Get(ctx context.Context, id string) (*domain.User, error)
	Search(ctx context.Context, filter UserFilter) ([]domain.User, error)

	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	// CreateFriendRequest returns errors.ErrAlreadyRequested when a pending
	// request from the same sender already exists.
	CreateFriendRequest(ctx context.Context, fromID, toID string) error
	// AcceptFriendRequest deletes the pending request and records the
	// symmetric friendship. Returns errors.ErrNotFound when no request from
	// fromID to userID is pending.
	AcceptFriendRequest(ctx context.Context, userID, fromID string) error
}
