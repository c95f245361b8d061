package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gaming-hub/auth"
	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
}

// AuthService registers profiles and exchanges credentials for tokens. Login
// failures are reported as invalid credentials without distinguishing an
// unknown username from a wrong password.
type AuthService struct {
	log    *slog.Logger
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(log *slog.Logger, users repositories.IUserRepository,
	tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, users: users, tokens: tokens}
}

// Register validates the credentials, stores the profile with its password
// hash and returns the profile with a signed token.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user, hash); err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", "user_id", user.ID, "username", username)

	token, err := s.tokens.Generate(user.ID, []string{"player"})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the password against the stored hash and returns the profile
// with a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	id, hash, err := s.users.CredentialsByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, "", errors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		return nil, "", errors.ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID, []string{"player"})
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}
