package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
)

// InMemoryChargeStore is an in-memory implementation of the charge.Repository interface
type InMemoryChargeStore struct {
	mu      sync.Mutex
	charges map[string]*charge.Charge
}

// NewInMemoryChargeStore creates a new instance of InMemoryChargeStore
func NewInMemoryChargeStore() *InMemoryChargeStore {
	return &InMemoryChargeStore{
		charges: make(map[string]*charge.Charge),
	}
}

func (s *InMemoryChargeStore) CreateCharge(ctx context.Context, c *charge.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.charges[c.ID] = c
	return nil
}

func (s *InMemoryChargeStore) GetCharge(ctx context.Context, id string) (*charge.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.charges[id]
	if !exists {
		return nil, ierr.NewError("charge not found").
			WithHint("Charge not found").
			WithReportableDetails(map[string]interface{}{
				"charge_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

// GetChargesByPlanID returns the plan's charges in creation order
func (s *InMemoryChargeStore) GetChargesByPlanID(ctx context.Context, planID string) ([]*charge.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	charges := make([]*charge.Charge, 0)
	for _, c := range s.charges {
		if c.PlanID == planID {
			charges = append(charges, c)
		}
	}

	sort.SliceStable(charges, func(i, j int) bool {
		return charges[i].CreatedAt.Before(charges[j].CreatedAt)
	})

	return charges, nil
}

// Clear clears all charges from the in-memory store
func (s *InMemoryChargeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.charges = make(map[string]*charge.Charge)
}
