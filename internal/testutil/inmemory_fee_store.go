package testutil

import (
	"context"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
)

// InMemoryFeeStore is an in-memory implementation of the fee.Repository interface
type InMemoryFeeStore struct {
	mu   sync.Mutex
	fees map[string]*fee.Fee
}

// NewInMemoryFeeStore creates a new instance of InMemoryFeeStore
func NewInMemoryFeeStore() *InMemoryFeeStore {
	return &InMemoryFeeStore{
		fees: make(map[string]*fee.Fee),
	}
}

func (s *InMemoryFeeStore) CreateFee(ctx context.Context, f *fee.Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fees[f.ID] = f
	return nil
}

func (s *InMemoryFeeStore) CreateFees(ctx context.Context, fees []*fee.Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range fees {
		s.fees[f.ID] = f
	}
	return nil
}

func (s *InMemoryFeeStore) GetFeesByInvoiceID(ctx context.Context, invoiceID string) ([]*fee.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fees := make([]*fee.Fee, 0)
	for _, f := range s.fees {
		if f.InvoiceID == invoiceID {
			fees = append(fees, f)
		}
	}
	return fees, nil
}

// Clear clears all fees from the in-memory store
func (s *InMemoryFeeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fees = make(map[string]*fee.Fee)
}
