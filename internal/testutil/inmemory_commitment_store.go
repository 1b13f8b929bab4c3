package testutil

import (
	"context"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/commitment"
)

// InMemoryCommitmentStore is an in-memory implementation of the commitment.Repository interface
type InMemoryCommitmentStore struct {
	mu          sync.Mutex
	commitments map[string]*commitment.Commitment
}

// NewInMemoryCommitmentStore creates a new instance of InMemoryCommitmentStore
func NewInMemoryCommitmentStore() *InMemoryCommitmentStore {
	return &InMemoryCommitmentStore{
		commitments: make(map[string]*commitment.Commitment),
	}
}

func (s *InMemoryCommitmentStore) CreateCommitment(ctx context.Context, c *commitment.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitments[c.ID] = c
	return nil
}

func (s *InMemoryCommitmentStore) GetCommitmentsByPlanID(ctx context.Context, planID string) ([]*commitment.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commitments := make([]*commitment.Commitment, 0)
	for _, c := range s.commitments {
		if c.PlanID == planID {
			commitments = append(commitments, c)
		}
	}
	return commitments, nil
}

// Clear clears all commitments from the in-memory store
func (s *InMemoryCommitmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitments = make(map[string]*commitment.Commitment)
}
