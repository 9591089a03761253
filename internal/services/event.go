package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/minitodo/apiserver/internal/store"
	"github.com/minitodo/apiserver/types"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, event types.Event) (types.Event, error)
	Update(ctx context.Context, lookup store.EventLookup, patch store.EventPatch) (types.Event, error)
	List(ctx context.Context) ([]types.Event, error)
}

// EventInput carries the caller-supplied fields of an event.
type EventInput struct {
	Email       string
	Title       string
	Description string
	Date        string
	Time        string
}

// EventService gates event writes on the owner existing and being active.
type EventService struct {
	users       UserRepository
	events      EventRepository
	deps        Deps
	strictMatch bool
}

// NewEventService constructs an EventService. By default an update applies
// to the first event matching the id or owned by the requester; strictMatch
// restricts the match to the id.
func NewEventService(users UserRepository, events EventRepository, deps Deps, strictMatch bool) *EventService {
	return &EventService{
		users:       users,
		events:      events,
		deps:        deps.withDefaults(),
		strictMatch: strictMatch,
	}
}

// Create adds an Upcoming event. Titles and descriptions are unique across
// all owners.
func (s *EventService) Create(ctx context.Context, in EventInput) (types.Event, error) {
	if err := s.requireActive(ctx, in.Email); err != nil {
		return types.Event{}, err
	}

	event, err := s.events.Create(ctx, types.Event{
		ID:          s.deps.IDs.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		Status:      types.EventUpcoming,
		Email:       in.Email,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.Event{}, ErrDuplicateEvent
		}
		return types.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update overwrites title, description, date and time of the selected event
// and returns all events.
func (s *EventService) Update(ctx context.Context, id string, in EventInput) ([]types.Event, error) {
	if err := s.requireActive(ctx, in.Email); err != nil {
		return nil, err
	}

	lookup := store.EventLookup{ID: id, Email: in.Email}
	if s.strictMatch {
		lookup.Email = ""
	}

	_, err := s.events.Update(ctx, lookup, store.EventPatch{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventService) requireActive(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive() {
		return ErrAccountNotActive
	}
	return nil
}
