package services

import (
	"errors"
	"event-lab/auth"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/repositories"
	"fmt"
	"log/slog"
)

type IAuthService interface {
	SignUp(request auth.SignUpRequest) (Session, error)
	SignIn(email, password string) (Session, error)
	Resume(token string) (domain.User, error)
}

// Session is a signed-in user and the token that lets them come back without a password.
type Session struct {
	User  domain.User
	Token string
}

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenIssuer
	log    *slog.Logger
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

func (s *AuthService) SignUp(request auth.SignUpRequest) (Session, error) {
	// Validation runs before the expensive hash.
	if err := auth.ValidateSignUp(request); err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}
	user, err := s.users.CreateUser(request.Email, request.FullName, hash)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("Account created", "user_id", user.ID)
	return s.open(user)
}

// SignIn never tells an unknown email apart from a wrong password.
func (s *AuthService) SignIn(email, password string) (Session, error) {
	if err := auth.ValidateSignIn(auth.SignInRequest{Email: email, Password: password}); err != nil {
		return Session{}, err
	}
	user, err := s.users.GetUserByEmail(email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return Session{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		s.log.Warn("Stored password hash unreadable", "user_id", user.ID, "error", err)
		return Session{}, apperrors.ErrInvalidCredentials
	}
	if !match {
		return Session{}, apperrors.ErrInvalidCredentials
	}
	return s.open(user)
}

// Resume turns a previously issued token back into its user.
func (s *AuthService) Resume(token string) (domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetUser(domain.UserID(claims.UserID))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return domain.User{}, apperrors.ErrInvalidSession
	}
	return user, err
}

func (s *AuthService) open(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperrors.ErrTokenGeneration, err)
	}
	return Session{User: user, Token: token}, nil
}
