package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gaming-hub/auth"
	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/mocks"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockIUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("unit-test-secret", time.Hour)
	return NewAuthService(slog.Default(), users, tokens), users
}

func Test_Register_Creates_Profile_And_Token(t *testing.T) {
	req := require.New(t)
	service, users := newAuthService(t)
	ctx := context.Background()

	var storedHash string
	users.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user *domain.User, hash string) error {
			req.Equal("gamer42", user.Username)
			req.NotEmpty(user.ID)
			storedHash = hash
			return nil
		})

	user, token, err := service.Register(ctx, "gamer42", "ComplexPass123!")
	req.NoError(err)
	req.NotEmpty(token)

	// The stored hash verifies the original password, never the plaintext.
	req.NotEqual("ComplexPass123!", storedHash)
	match, err := auth.ComparePassword("ComplexPass123!", storedHash)
	req.NoError(err)
	req.True(match)

	tokens := auth.NewTokenManager("unit-test-secret", time.Hour)
	claims, err := tokens.Validate(token)
	req.NoError(err)
	req.Equal(user.ID, claims.UserID)
}

func Test_Register_Rejections(t *testing.T) {
	req := require.New(t)
	service, users := newAuthService(t)
	ctx := context.Background()

	t.Run("Should reject weak password before touching the store", func(t *testing.T) {
		_, _, err := service.Register(ctx, "gamer42", "weak")
		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("Should surface a taken username", func(t *testing.T) {
		users.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).Return(errors.ErrUsernameTaken)
		_, _, err := service.Register(ctx, "gamer42", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrUsernameTaken)
	})
}

func Test_Login_Succeeds_With_Correct_Password(t *testing.T) {
	req := require.New(t)
	service, users := newAuthService(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)

	users.EXPECT().CredentialsByUsername(ctx, "gamer42").Return("u1", hash, nil)
	users.EXPECT().Get(ctx, "u1").Return(&domain.User{ID: "u1", Username: "gamer42"}, nil)

	user, token, err := service.Login(ctx, "gamer42", "ComplexPass123!")
	req.NoError(err)
	req.Equal("u1", user.ID)
	req.NotEmpty(token)
}

func Test_Login_Rejects_Bad_Credentials(t *testing.T) {
	req := require.New(t)
	service, users := newAuthService(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)

	t.Run("Should reject unknown username as invalid credentials", func(t *testing.T) {
		users.EXPECT().CredentialsByUsername(ctx, "ghost").Return("", "", errors.ErrNotFound)
		_, _, err := service.Login(ctx, "ghost", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("Should reject wrong password", func(t *testing.T) {
		users.EXPECT().CredentialsByUsername(ctx, "gamer42").Return("u1", hash, nil)
		_, _, err := service.Login(ctx, "gamer42", "WrongPassword1!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("Should reject corrupted stored hash", func(t *testing.T) {
		users.EXPECT().CredentialsByUsername(ctx, "gamer42").Return("u1", "not-a-hash", nil)
		_, _, err := service.Login(ctx, "gamer42", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
