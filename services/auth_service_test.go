package services

import (
	"event-lab/auth"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/mocks"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T, repo *mocks.MockIUserRepository) *AuthService {
	tokens, err := auth.NewTokenIssuer(strings.Repeat("k", 32), 24*time.Hour)
	require.NoError(t, err)
	return NewAuthService(repo, tokens, slog.Default())
}

func TestAuthService_SignUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := newAuthService(t, mockRepo)
	request := auth.SignUpRequest{FullName: "Alice", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1"}

	t.Run("should create the account with a hashed password", func(t *testing.T) {
		req := require.New(t)
		created := domain.User{ID: "u1", Email: "alice@example.com", FullName: "Alice"}
		mockRepo.EXPECT().
			CreateUser("alice@example.com", "Alice", gomock.Cond(func(hash string) bool {
				return strings.HasPrefix(hash, "$argon2id$") && !strings.Contains(hash, "secret1")
			})).
			Return(created, nil)

		session, err := svc.SignUp(request)
		req.NoError(err)
		req.Equal(created, session.User)
		req.NotEmpty(session.Token)
	})

	t.Run("should not touch the repository when passwords differ", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		bad := request
		bad.ConfirmPassword = "secret2"
		_, err := svc.SignUp(bad)
		req.ErrorIs(err, apperrors.ErrInvalidPassword)
	})

	t.Run("should propagate an existing email", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().
			CreateUser("alice@example.com", "Alice", gomock.Any()).
			Return(domain.User{}, apperrors.ErrUserAlreadyExists)

		_, err := svc.SignUp(request)
		req.ErrorIs(err, apperrors.ErrUserAlreadyExists)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := newAuthService(t, mockRepo)

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	stored := domain.User{ID: "u1", Email: "alice@example.com", PasswordHash: hash}

	t.Run("should open a session with the right password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail("alice@example.com").Return(stored, nil)

		session, err := svc.SignIn("alice@example.com", "secret1")
		req.NoError(err)
		req.Equal(stored.ID, session.User.ID)

		mockRepo.EXPECT().GetUser(domain.UserID("u1")).Return(stored, nil)
		resumed, err := svc.Resume(session.Token)
		req.NoError(err)
		req.Equal(stored.ID, resumed.ID)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail("alice@example.com").Return(stored, nil)

		_, err := svc.SignIn("alice@example.com", "secret2")
		req.ErrorIs(err, apperrors.ErrInvalidCredentials)
	})

	t.Run("should hide unknown emails", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail("ghost@example.com").Return(domain.User{}, apperrors.ErrUserNotFound)

		_, err := svc.SignIn("ghost@example.com", "secret1")
		req.ErrorIs(err, apperrors.ErrInvalidCredentials)
	})

	t.Run("should reject a corrupt stored hash", func(t *testing.T) {
		req := require.New(t)
		corrupt := stored
		corrupt.PasswordHash = "plain"
		mockRepo.EXPECT().GetUserByEmail("alice@example.com").Return(corrupt, nil)

		_, err := svc.SignIn("alice@example.com", "secret1")
		req.ErrorIs(err, apperrors.ErrInvalidCredentials)
	})

	t.Run("should propagate storage failures", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail("alice@example.com").Return(domain.User{}, fmt.Errorf("disk full"))

		_, err := svc.SignIn("alice@example.com", "secret1")
		req.Error(err)
		req.NotErrorIs(err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthService_Resume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := newAuthService(t, mockRepo)

	_, err := svc.Resume("garbage")
	req.ErrorIs(err, apperrors.ErrInvalidSession)

	token, err := svc.tokens.Issue("deleted")
	req.NoError(err)
	mockRepo.EXPECT().GetUser(domain.UserID("deleted")).Return(domain.User{}, apperrors.ErrUserNotFound)
	_, err = svc.Resume(token)
	req.ErrorIs(err, apperrors.ErrInvalidSession)
}
