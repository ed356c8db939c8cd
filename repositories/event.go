//go:generate go run go.uber.org/mock/mockgen -source=event.go -destination=../mocks/mock_event_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const eventPrefix = "event:"

type IEventRepository interface {
	Store(event domain.Event) error
	Get(id domain.EventID) (domain.Event, error)
	List() ([]domain.Event, error)
	Delete(id domain.EventID) error
}

type EventRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewEventRepository(db *badger.DB, log *slog.Logger) EventRepository {
	return EventRepository{db: db, log: log}
}

// DiskEvent is the stored shape of an event.
// Times are kept as unix nanoseconds, 0 meaning "not set".
type DiskEvent struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	Date          int64  `json:"date"`
	MaxAttendees  int    `json:"max_attendees"`
	CreatedBy     string `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     int64  `json:"created_at"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Store inserts or replaces the event under "event:{id}".
func (r EventRepository) Store(event domain.Event) error {
	if event.ID == "" {
		return fmt.Errorf("%w: missing id", apperrors.ErrInvalidEvent)
	}
	bytes, err := json.Marshal(fromDomainEvent(event))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(eventKey(event.ID), bytes)
	})
}

func (r EventRepository) Get(id domain.EventID) (domain.Event, error) {
	var disk DiskEvent
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(eventKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Event{}, fmt.Errorf("%w: %s", apperrors.ErrEventNotFound, id)
	}
	if err != nil {
		return domain.Event{}, err
	}
	return toDomainEvent(disk), nil
}

// List returns every stored event in key order.
// A record that cannot be decoded is skipped and logged.
func (r EventRepository) List() ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(eventPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var disk DiskEvent
				if err := json.Unmarshal(val, &disk); err != nil {
					r.log.Warn("Skipping unreadable event", "key", string(item.Key()), "error", err)
					return nil
				}
				events = append(events, toDomainEvent(disk))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return events, err
}

func (r EventRepository) Delete(id domain.EventID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(eventKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", apperrors.ErrEventNotFound, id)
			}
			return err
		}
		return txn.Delete(eventKey(id))
	})
}

func eventKey(id domain.EventID) []byte {
	return []byte(eventPrefix + string(id))
}

func fromDomainEvent(e domain.Event) DiskEvent {
	return DiskEvent{
		ID:            string(e.ID),
		Name:          e.Name,
		Description:   e.Description,
		Category:      e.Category,
		Location:      e.Location,
		Date:          toUnixNano(e.Date),
		MaxAttendees:  e.MaxAttendees,
		CreatedBy:     string(e.CreatedBy),
		CreatedByName: e.CreatedByName,
		CreatedAt:     toUnixNano(e.CreatedAt),
		ImageURL:      e.ImageURL,
	}
}

func toDomainEvent(d DiskEvent) domain.Event {
	return domain.Event{
		ID:            domain.EventID(d.ID),
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Location:      d.Location,
		Date:          fromUnixNano(d.Date),
		MaxAttendees:  d.MaxAttendees,
		CreatedBy:     domain.UserID(d.CreatedBy),
		CreatedByName: d.CreatedByName,
		CreatedAt:     fromUnixNano(d.CreatedAt),
		ImageURL:      d.ImageURL,
	}
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
