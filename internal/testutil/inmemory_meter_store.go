package testutil

import (
	"context"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
)

// InMemoryMeterStore is an in-memory implementation of the meter.Repository interface
type InMemoryMeterStore struct {
	mu     sync.Mutex
	meters map[string]*meter.Meter
}

// NewInMemoryMeterStore creates a new instance of InMemoryMeterStore
func NewInMemoryMeterStore() *InMemoryMeterStore {
	return &InMemoryMeterStore{
		meters: make(map[string]*meter.Meter),
	}
}

func (s *InMemoryMeterStore) CreateMeter(ctx context.Context, m *meter.Meter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meters[m.ID] = m
	return nil
}

func (s *InMemoryMeterStore) GetMeter(ctx context.Context, id string) (*meter.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meters[id]
	if !exists {
		return nil, ierr.NewError("meter not found").
			WithHint("Meter not found").
			WithReportableDetails(map[string]interface{}{
				"meter_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return m, nil
}

func (s *InMemoryMeterStore) GetMeterByEventName(ctx context.Context, eventName string) (*meter.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meters {
		if m.EventName == eventName {
			return m, nil
		}
	}
	return nil, ierr.NewError("meter not found").
		WithHint("No meter registered for event name").
		WithReportableDetails(map[string]interface{}{
			"event_name": eventName,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryMeterStore) ListMeters(ctx context.Context) ([]*meter.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meters := make([]*meter.Meter, 0, len(s.meters))
	for _, m := range s.meters {
		meters = append(meters, m)
	}
	return meters, nil
}

// Clear clears all meters from the in-memory store
func (s *InMemoryMeterStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meters = make(map[string]*meter.Meter)
}
