package store

import (
	"context"
	"sync"

	"github.com/minitodo/apiserver/types"
)

// EventLookup selects the event an update applies to. The first event whose
// ID equals ID, or whose owner equals Email when Email is set, is chosen.
type EventLookup struct {
	ID    string
	Email string
}

func (l EventLookup) matches(event types.Event) bool {
	if event.ID == l.ID {
		return true
	}
	return l.Email != "" && event.Email == l.Email
}

// EventPatch holds the mutable fields of an event.
type EventPatch struct {
	Title       string
	Description string
	Date        string
	Time        string
}

// EventRepository keeps todo events in memory.
type EventRepository struct {
	mu     sync.RWMutex
	events []types.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

// Create inserts event unless another event already uses its title or its
// description, in which case ErrDuplicate is returned. The check and the
// insert happen under the same lock.
func (r *EventRepository) Create(ctx context.Context, event types.Event) (types.Event, error) {
	if err := ctx.Err(); err != nil {
		return types.Event{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.events {
		if existing.Title == event.Title || existing.Description == event.Description {
			return types.Event{}, ErrDuplicate
		}
	}
	r.events = append(r.events, event)
	return event, nil
}

// Update overwrites the mutable fields of the first event selected by lookup.
func (r *EventRepository) Update(ctx context.Context, lookup EventLookup, patch EventPatch) (types.Event, error) {
	if err := ctx.Err(); err != nil {
		return types.Event{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if !lookup.matches(r.events[i]) {
			continue
		}
		r.events[i].Title = patch.Title
		r.events[i].Description = patch.Description
		r.events[i].Date = patch.Date
		r.events[i].Time = patch.Time
		return r.events[i], nil
	}
	return types.Event{}, ErrNotFound
}

func (r *EventRepository) List(ctx context.Context) ([]types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]types.Event, len(r.events))
	copy(events, r.events)
	return events, nil
}
