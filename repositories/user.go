//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, fullName, passwordHash string) (domain.User, error)
	GetUser(id domain.UserID) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	UpdateUser(user domain.User) error
}

type UserRepository struct {
	db       *badger.DB
	validate *validator.Validate
	now      func() time.Time
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db, validate: validator.New(), now: time.Now}
}

// DiskUser is stored under "user:{id}"; "user_email:{email}" points back to the id.
type DiskUser struct {
	ID           string `json:"id"            validate:"required"`
	Email        string `json:"email"         validate:"required,email"`
	FullName     string `json:"full_name"     validate:"max=120"`
	PasswordHash string `json:"password_hash" validate:"required"`
	CreatedAt    int64  `json:"created_at"`
}

// CreateUser validates and persists a new account. Emails are unique, case-insensitively.
// The password must already be hashed.
func (u UserRepository) CreateUser(email, fullName, passwordHash string) (domain.User, error) {
	disk := DiskUser{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: passwordHash,
		CreatedAt:    u.now().UnixNano(),
	}
	if err := u.validate.Struct(disk); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidUser, err)
	}
	data, err := json.Marshal(disk)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user_email:" + disk.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, []byte(disk.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(domain.UserID(disk.ID)), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(disk), nil
}

func (u UserRepository) GetUser(id domain.UserID) (domain.User, error) {
	var disk DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		return readUser(txn, id, &disk)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(disk), nil
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var disk DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user_email:" + strings.ToLower(strings.TrimSpace(email))))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return readUser(txn, domain.UserID(id), &disk)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(disk), nil
}

// UpdateUser rewrites the full name. Email, password and creation time are immutable.
func (u UserRepository) UpdateUser(user domain.User) error {
	return u.db.Update(func(txn *badger.Txn) error {
		var disk DiskUser
		if err := readUser(txn, user.ID, &disk); err != nil {
			return err
		}
		disk.FullName = strings.TrimSpace(user.FullName)
		if err := u.validate.Struct(disk); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidUser, err)
		}
		data, err := json.Marshal(disk)
		if err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
}

func readUser(txn *badger.Txn, id domain.UserID, disk *DiskUser) error {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, disk)
	})
}

func userKey(id domain.UserID) []byte {
	return []byte("user:" + string(id))
}

func toDomainUser(d DiskUser) domain.User {
	return domain.User{
		ID:           domain.UserID(d.ID),
		Email:        d.Email,
		FullName:     d.FullName,
		PasswordHash: d.PasswordHash,
		CreatedAt:    fromUnixNano(d.CreatedAt),
	}
}
