//go:generate go run go.uber.org/mock/mockgen -source=registration.go -destination=../mocks/mock_registration_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type IRegistrationRepository interface {
	Register(registration domain.Registration, limit int) error
	Unregister(eventID domain.EventID, userID domain.UserID) error
	IsRegistered(eventID domain.EventID, userID domain.UserID) (bool, error)
	Count(eventID domain.EventID) (int, error)
	ListUsers(eventID domain.EventID) ([]domain.Registration, error)
	ListEvents(userID domain.UserID) ([]domain.Registration, error)
}

// RegistrationRepository keeps two keys per registration so it can be read from both sides:
// "reg:{event}:{user}" and "reg_user:{user}:{event}".
// "reg_count:{event}" holds the seat count and "reg_slot:{user}:{start}" the event a user
// holds at one instant. Every write reads them, so badger rejects concurrent registrations
// to the same event or the same slot with badger.ErrConflict, and the write is replayed.
type RegistrationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRegistrationRepository(db *badger.DB, log *slog.Logger) RegistrationRepository {
	return RegistrationRepository{db: db, log: log}
}

type DiskRegistration struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	At       int64  `json:"at"`
	StartsAt int64  `json:"starts_at,omitempty"`
}

// maxAttempts bounds how often a transaction rejected by a concurrent write is replayed.
const maxAttempts = 3

// update replays fn while badger reports a conflict. A conflict on the last attempt
// becomes ErrRegistrationBusy.
func (r RegistrationRepository) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = r.db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
		r.log.Debug("Registration conflict, replaying", "attempt", attempt)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrRegistrationBusy, err)
}

// Register stores the registration unless the user already holds a seat, already holds
// another event starting at StartsAt, or the event already counts limit registrations.
// A limit <= 0 means unlimited, a zero StartsAt skips the slot check.
// The checks and the write share one transaction.
func (r RegistrationRepository) Register(registration domain.Registration, limit int) error {
	bytes, err := json.Marshal(DiskRegistration{
		EventID:  string(registration.EventID),
		UserID:   string(registration.UserID),
		At:       toUnixNano(registration.At),
		StartsAt: toUnixNano(registration.StartsAt),
	})
	if err != nil {
		return err
	}
	return r.update(func(txn *badger.Txn) error {
		key := byEventKey(registration.EventID, registration.UserID)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrAlreadyRegistered
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		slot := slotKey(registration.UserID, toUnixNano(registration.StartsAt))
		if slot != nil {
			if _, err := txn.Get(slot); err == nil {
				return apperrors.ErrScheduleConflict
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		count, err := readCount(txn, registration.EventID)
		if err != nil {
			return err
		}
		if limit > 0 && count >= limit {
			return apperrors.ErrEventFull
		}
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		if err := txn.Set(byUserKey(registration.UserID, registration.EventID), bytes); err != nil {
			return err
		}
		if slot != nil {
			if err := txn.Set(slot, []byte(registration.EventID)); err != nil {
				return err
			}
		}
		return writeCount(txn, registration.EventID, count+1)
	})
}

func (r RegistrationRepository) Unregister(eventID domain.EventID, userID domain.UserID) error {
	return r.update(func(txn *badger.Txn) error {
		key := byEventKey(eventID, userID)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotRegistered
		}
		if err != nil {
			return err
		}
		var disk DiskRegistration
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &disk) }); err != nil {
			return fmt.Errorf("decode registration %s: %w", key, err)
		}
		if slot := slotKey(userID, disk.StartsAt); slot != nil {
			if err := txn.Delete(slot); err != nil {
				return err
			}
		}
		count, err := readCount(txn, eventID)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(byUserKey(userID, eventID)); err != nil {
			return err
		}
		return writeCount(txn, eventID, max(count-1, 0))
	})
}

func (r RegistrationRepository) IsRegistered(eventID domain.EventID, userID domain.UserID) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(byEventKey(eventID, userID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r RegistrationRepository) Count(eventID domain.EventID) (int, error) {
	var count int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = readCount(txn, eventID)
		return err
	})
	return count, err
}

// ListUsers returns the registrations of one event.
func (r RegistrationRepository) ListUsers(eventID domain.EventID) ([]domain.Registration, error) {
	return r.scan(byEventPrefix(eventID))
}

// ListEvents returns the registrations of one user.
func (r RegistrationRepository) ListEvents(userID domain.UserID) ([]domain.Registration, error) {
	return r.scan(byUserPrefix(userID))
}

func (r RegistrationRepository) scan(prefix []byte) ([]domain.Registration, error) {
	var registrations []domain.Registration
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var disk DiskRegistration
				if err := json.Unmarshal(val, &disk); err != nil {
					return fmt.Errorf("decode registration %s: %w", it.Item().Key(), err)
				}
				registrations = append(registrations, domain.Registration{
					EventID:  domain.EventID(disk.EventID),
					UserID:   domain.UserID(disk.UserID),
					At:       fromUnixNano(disk.At),
					StartsAt: fromUnixNano(disk.StartsAt),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return registrations, err
}

func readCount(txn *badger.Txn, eventID domain.EventID) (int, error) {
	item, err := txn.Get(countKey(eventID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var count int
	err = item.Value(func(val []byte) error {
		count, err = strconv.Atoi(string(val))
		return err
	})
	return count, err
}

func writeCount(txn *badger.Txn, eventID domain.EventID, count int) error {
	if count == 0 {
		return txn.Delete(countKey(eventID))
	}
	return txn.Set(countKey(eventID), []byte(strconv.Itoa(count)))
}

func countKey(eventID domain.EventID) []byte {
	return []byte("reg_count:" + string(eventID))
}

// slotKey is nil for a registration without a start time.
func slotKey(userID domain.UserID, startsAt int64) []byte {
	if startsAt == 0 {
		return nil
	}
	return []byte("reg_slot:" + string(userID) + ":" + strconv.FormatInt(startsAt, 10))
}

func byEventPrefix(eventID domain.EventID) []byte {
	return []byte("reg:" + string(eventID) + ":")
}

func byUserPrefix(userID domain.UserID) []byte {
	return []byte("reg_user:" + string(userID) + ":")
}

func byEventKey(eventID domain.EventID, userID domain.UserID) []byte {
	return []byte(strings.Join([]string{"reg", string(eventID), string(userID)}, ":"))
}

func byUserKey(userID domain.UserID, eventID domain.EventID) []byte {
	return []byte(strings.Join([]string{"reg_user", string(userID), string(eventID)}, ":"))
}
