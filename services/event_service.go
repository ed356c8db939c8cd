package services

import (
	"cmp"
	"context"
	"errors"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/repositories"
	"event-lab/search"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultMaxAttendees = 50
	AllCategories       = "All"
	anonymousCreator    = "Anonymous"
	searchLimit         = 50
)

type IEventService interface {
	CreateEvent(request CreateEventRequest) (domain.Event, error)
	DeleteEvent(userID domain.UserID, eventID domain.EventID) error
	GetEvent(userID domain.UserID, eventID domain.EventID) (domain.EventView, error)
	ListUpcoming(userID domain.UserID, filter EventFilter) ([]domain.EventView, error)
	Categories() ([]string, error)
	Search(ctx context.Context, userID domain.UserID, text string) ([]domain.EventView, error)
	CreatedBy(userID domain.UserID) ([]domain.EventView, error)
	RegisteredFor(userID domain.UserID) ([]domain.EventView, error)
	Attendees(eventID domain.EventID) ([]string, error)
	Register(userID domain.UserID, eventID domain.EventID) error
	Leave(userID domain.UserID, eventID domain.EventID) error
}

// CreateEventRequest is the event form. MaxAttendees 0 means the configured default.
type CreateEventRequest struct {
	CreatorID    domain.UserID
	Name         string    `validate:"required,max=120"`
	Description  string    `validate:"required"`
	Location     string    `validate:"required"`
	Category     string    `validate:"required,category"`
	Date         time.Time `validate:"required"`
	MaxAttendees int       `validate:"min=0,max=50"`
	ImageURL     string    `validate:"omitempty,url"`
}

// EventFilter narrows the upcoming list. Zero values match everything.
type EventFilter struct {
	Search   string // substring of name or location
	Category string // exact category, "All" or empty for any
	Location string // exact location
	Day      *time.Time
}

type EventOption func(*EventService)

func WithEventClock(now func() time.Time) EventOption {
	return func(s *EventService) { s.now = now }
}

// WithEventLocation sets the zone used to decide what "today" and "same day" mean.
func WithEventLocation(loc *time.Location) EventOption {
	return func(s *EventService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithDefaultMaxAttendees sets the limit used when the form leaves it empty.
func WithDefaultMaxAttendees(n int) EventOption {
	return func(s *EventService) {
		if n > 0 {
			s.defaultMaxAttendees = n
		}
	}
}

// WithOnChange registers a callback fired after any write to events or registrations.
func WithOnChange(onChange func()) EventOption {
	return func(s *EventService) { s.onChange = onChange }
}

type EventService struct {
	events        repositories.IEventRepository
	registrations repositories.IRegistrationRepository
	users         repositories.IUserRepository
	index         search.IEventIndex
	validate      *validator.Validate
	log           *slog.Logger
	now           func() time.Time
	location      *time.Location
	onChange      func()

	defaultMaxAttendees int
}

func NewEventService(
	events repositories.IEventRepository,
	registrations repositories.IRegistrationRepository,
	users repositories.IUserRepository,
	index search.IEventIndex,
	log *slog.Logger,
	opts ...EventOption,
) *EventService {
	validate := validator.New()
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.Categories, fl.Field().String())
	})
	s := &EventService{
		events:        events,
		registrations: registrations,
		users:         users,
		index:         index,
		validate:      validate,
		log:           log,
		now:           time.Now,
		location:      time.Local,
		onChange:      func() {},

		defaultMaxAttendees: DefaultMaxAttendees,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EventService) CreateEvent(request CreateEventRequest) (domain.Event, error) {
	if request.CreatorID == "" {
		return domain.Event{}, apperrors.ErrLoginRequired
	}
	request.Name = strings.TrimSpace(request.Name)
	request.Description = strings.TrimSpace(request.Description)
	request.Location = strings.TrimSpace(request.Location)
	request.ImageURL = strings.TrimSpace(request.ImageURL)
	if err := s.validate.Struct(request); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidEvent, err)
	}
	now := s.now()
	if !request.Date.After(now) {
		return domain.Event{}, fmt.Errorf("%w: date must be in the future", apperrors.ErrInvalidEvent)
	}

	existing, err := s.events.List()
	if err != nil {
		return domain.Event{}, err
	}
	if lo.ContainsBy(existing, func(e domain.Event) bool {
		return e.CreatedBy == request.CreatorID && e.Date.Equal(request.Date)
	}) {
		return domain.Event{}, fmt.Errorf("%w: you already have an event at this time", apperrors.ErrScheduleConflict)
	}

	creatorName, err := s.creatorName(request.CreatorID)
	if err != nil {
		return domain.Event{}, err
	}

	event := domain.Event{
		ID:            domain.EventID(uuid.New().String()),
		Name:          request.Name,
		Description:   request.Description,
		Category:      request.Category,
		Location:      request.Location,
		Date:          request.Date,
		MaxAttendees:  cmp.Or(request.MaxAttendees, s.defaultMaxAttendees),
		CreatedBy:     request.CreatorID,
		CreatedByName: creatorName,
		CreatedAt:     now,
		ImageURL:      request.ImageURL,
	}
	if err := s.events.Store(event); err != nil {
		return domain.Event{}, err
	}
	if err := s.index.Index(event); err != nil {
		s.log.Warn("Event stored but not indexed", "event_id", event.ID, "error", err)
	}
	s.log.Info("Event created", "event_id", event.ID, "created_by", event.CreatedBy)
	s.onChange()
	return event, nil
}

// DeleteEvent removes an event and every registration to it. Only its creator may do so.
func (s *EventService) DeleteEvent(userID domain.UserID, eventID domain.EventID) error {
	if userID == "" {
		return apperrors.ErrLoginRequired
	}
	event, err := s.events.Get(eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != userID {
		return apperrors.ErrNotEventOwner
	}
	registrations, err := s.registrations.ListUsers(eventID)
	if err != nil {
		return err
	}
	for _, r := range registrations {
		if err := s.registrations.Unregister(eventID, r.UserID); err != nil && !errors.Is(err, apperrors.ErrNotRegistered) {
			return err
		}
	}
	if err := s.events.Delete(eventID); err != nil {
		return err
	}
	if err := s.index.Remove(eventID); err != nil {
		s.log.Warn("Event deleted but still indexed", "event_id", eventID, "error", err)
	}
	s.onChange()
	return nil
}

func (s *EventService) GetEvent(userID domain.UserID, eventID domain.EventID) (domain.EventView, error) {
	event, err := s.events.Get(eventID)
	if err != nil {
		return domain.EventView{}, err
	}
	return s.view(userID, event)
}

// ListUpcoming returns events dated today or later, most recently created first.
func (s *EventService) ListUpcoming(userID domain.UserID, filter EventFilter) ([]domain.EventView, error) {
	upcoming, err := s.upcoming()
	if err != nil {
		return nil, err
	}
	matching := lo.Filter(upcoming, func(e domain.Event, _ int) bool {
		return s.matchesFilter(e, filter)
	})
	return s.views(userID, matching)
}

// Categories lists "All" followed by the distinct categories of upcoming events.
func (s *EventService) Categories() ([]string, error) {
	upcoming, err := s.upcoming()
	if err != nil {
		return nil, err
	}
	categories := lo.Uniq(lo.FilterMap(upcoming, func(e domain.Event, _ int) (string, bool) {
		return e.Category, e.Category != ""
	}))
	return append([]string{AllCategories}, categories...), nil
}

// Search ranks events by full-text relevance. Stale index entries are skipped.
func (s *EventService) Search(ctx context.Context, userID domain.UserID, text string) ([]domain.EventView, error) {
	ids, err := s.index.Search(ctx, text, searchLimit)
	if err != nil {
		return nil, err
	}
	events, err := s.loadAll(ids)
	if err != nil {
		return nil, err
	}
	return s.views(userID, events)
}

// CreatedBy lists the events of one creator, soonest first.
func (s *EventService) CreatedBy(userID domain.UserID) ([]domain.EventView, error) {
	all, err := s.events.List()
	if err != nil {
		return nil, err
	}
	mine := lo.Filter(all, func(e domain.Event, _ int) bool {
		return e.CreatedBy == userID
	})
	slices.SortStableFunc(mine, func(a, b domain.Event) int {
		return a.Date.Compare(b.Date)
	})
	return s.views(userID, mine)
}

// RegisteredFor lists the events a user holds a seat at, soonest first.
func (s *EventService) RegisteredFor(userID domain.UserID) ([]domain.EventView, error) {
	registrations, err := s.registrations.ListEvents(userID)
	if err != nil {
		return nil, err
	}
	events, err := s.loadAll(lo.Map(registrations, func(r domain.Registration, _ int) domain.EventID {
		return r.EventID
	}))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(events, func(a, b domain.Event) int {
		return a.Date.Compare(b.Date)
	})
	return s.views(userID, events)
}

// Attendees names the registered users: full name, else email, else id.
func (s *EventService) Attendees(eventID domain.EventID) ([]string, error) {
	registrations, err := s.registrations.ListUsers(eventID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		user, err := s.users.GetUser(r.UserID)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			names = append(names, string(r.UserID))
		case err != nil:
			return nil, err
		default:
			names = append(names, cmp.Or(user.FullName, user.Email, string(r.UserID)))
		}
	}
	return names, nil
}

// Register takes a seat for the user. A user cannot hold two events starting at the same instant.
func (s *EventService) Register(userID domain.UserID, eventID domain.EventID) error {
	if userID == "" {
		return apperrors.ErrLoginRequired
	}
	event, err := s.events.Get(eventID)
	if err != nil {
		return err
	}
	registered, err := s.registrations.IsRegistered(eventID, userID)
	if err != nil {
		return err
	}
	if registered {
		return apperrors.ErrAlreadyRegistered
	}

	err = s.registrations.Register(domain.Registration{
		EventID:  eventID,
		UserID:   userID,
		At:       s.now(),
		StartsAt: event.Date,
	}, event.MaxAttendees)
	if err != nil {
		return err
	}
	s.log.Info("User registered", "event_id", eventID, "user_id", userID)
	s.onChange()
	return nil
}

func (s *EventService) Leave(userID domain.UserID, eventID domain.EventID) error {
	if userID == "" {
		return apperrors.ErrLoginRequired
	}
	if err := s.registrations.Unregister(eventID, userID); err != nil {
		return err
	}
	s.log.Info("User left", "event_id", eventID, "user_id", userID)
	s.onChange()
	return nil
}

func (s *EventService) creatorName(userID domain.UserID) (string, error) {
	user, err := s.users.GetUser(userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return anonymousCreator, nil
	}
	if err != nil {
		return "", err
	}
	return cmp.Or(user.FullName, anonymousCreator), nil
}

func (s *EventService) upcoming() ([]domain.Event, error) {
	all, err := s.events.List()
	if err != nil {
		return nil, err
	}
	today := startOfDay(s.now(), s.location)
	upcoming := lo.Filter(all, func(e domain.Event, _ int) bool {
		return e.HasDate() && !e.Date.Before(today)
	})
	slices.SortStableFunc(upcoming, func(a, b domain.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return upcoming, nil
}

func (s *EventService) matchesFilter(e domain.Event, filter EventFilter) bool {
	if text := strings.ToLower(filter.Search); text != "" &&
		!strings.Contains(strings.ToLower(e.Name), text) &&
		!strings.Contains(strings.ToLower(e.Location), text) {
		return false
	}
	if filter.Category != "" && filter.Category != AllCategories && e.Category != filter.Category {
		return false
	}
	if filter.Location != "" && e.Location != filter.Location {
		return false
	}
	if filter.Day != nil && !startOfDay(e.Date, s.location).Equal(startOfDay(*filter.Day, s.location)) {
		return false
	}
	return true
}

func (s *EventService) loadAll(ids []domain.EventID) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		event, err := s.events.Get(id)
		if errors.Is(err, apperrors.ErrEventNotFound) {
			s.log.Debug("Skipping missing event", "event_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *EventService) views(userID domain.UserID, events []domain.Event) ([]domain.EventView, error) {
	views := make([]domain.EventView, 0, len(events))
	for _, e := range events {
		v, err := s.view(userID, e)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *EventService) view(userID domain.UserID, event domain.Event) (domain.EventView, error) {
	count, err := s.registrations.Count(event.ID)
	if err != nil {
		return domain.EventView{}, err
	}
	registered := false
	if userID != "" {
		if registered, err = s.registrations.IsRegistered(event.ID, userID); err != nil {
			return domain.EventView{}, err
		}
	}
	return domain.EventView{Event: event, RegisteredCount: count, IsRegistered: registered}, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
