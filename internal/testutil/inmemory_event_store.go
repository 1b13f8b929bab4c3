package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/events"
)

// InMemoryEventStore is an in-memory implementation of the events.Repository interface
type InMemoryEventStore struct {
	mu     sync.Mutex
	events []*events.Event
}

// NewInMemoryEventStore creates a new instance of InMemoryEventStore
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events: make([]*events.Event, 0),
	}
}

func (s *InMemoryEventStore) InsertEvent(ctx context.Context, event *events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

// GetEvents returns events matching the customer, name and half open time
// window, ordered by timestamp.
func (s *InMemoryEventStore) GetEvents(ctx context.Context, params *events.GetEventsParams) ([]*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*events.Event, 0)
	for _, ev := range s.events {
		if ev.ExternalCustomerID != params.ExternalCustomerID {
			continue
		}
		if ev.EventName != params.EventName {
			continue
		}
		if ev.Timestamp.Before(params.StartTime) || !ev.Timestamp.Before(params.EndTime) {
			continue
		}
		matched = append(matched, ev)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	return matched, nil
}

// Clear clears all events from the in-memory store
func (s *InMemoryEventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]*events.Event, 0)
}
