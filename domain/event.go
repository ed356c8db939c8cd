package domain

import "time"

type EventID string

// Event is a scheduled gathering users can browse and register for.
type Event struct {
	ID            EventID
	Name          string
	Description   string
	Category      string
	Location      string
	Date          time.Time // scheduled start
	MaxAttendees  int
	CreatedBy     UserID
	CreatedByName string
	CreatedAt     time.Time
	ImageURL      string
}

// HasDate reports whether the event carries a usable start date.
func (e Event) HasDate() bool {
	return !e.Date.IsZero()
}

// EventView is an Event decorated with the registration state seen by one user.
type EventView struct {
	Event
	RegisteredCount int
	IsRegistered    bool
}

// IsFull is true once the registered count reached the attendee limit.
// A zero limit means unlimited.
func (v EventView) IsFull() bool {
	return v.MaxAttendees > 0 && v.RegisteredCount >= v.MaxAttendees
}

// Categories offered by the event creation form.
var Categories = []string{
	"Concert / Music", "Conference", "Workshop", "Tech Meetup",
	"Party / Social", "Education / Seminar", "Health / Wellness",
	"Art & Culture", "Market / Expo", "Other",
}

// Registration records that a user takes a seat at an event.
type Registration struct {
	EventID EventID
	UserID  UserID
	At      time.Time
	// StartsAt is the event start, a user holds at most one seat per instant.
	StartsAt time.Time
}
