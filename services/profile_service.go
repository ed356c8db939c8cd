package services

import (
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/repositories"
	"log/slog"
)

type IProfileService interface {
	Profile(userID domain.UserID) (domain.User, error)
	Rename(userID domain.UserID, fullName string) (domain.User, error)
}

// ProfileService manages the name shown on events and attendee lists.
type ProfileService struct {
	users repositories.IUserRepository
	log   *slog.Logger
}

func NewProfileService(users repositories.IUserRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{users: users, log: log}
}

func (s *ProfileService) Profile(userID domain.UserID) (domain.User, error) {
	if userID == "" {
		return domain.User{}, apperrors.ErrLoginRequired
	}
	return s.users.GetUser(userID)
}

func (s *ProfileService) Rename(userID domain.UserID, fullName string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, apperrors.ErrLoginRequired
	}
	user, err := s.users.GetUser(userID)
	if err != nil {
		return domain.User{}, err
	}
	user.FullName = fullName
	if err := s.users.UpdateUser(user); err != nil {
		return domain.User{}, err
	}
	s.log.Debug("Profile renamed", "user_id", userID)
	return s.users.GetUser(userID)
}
