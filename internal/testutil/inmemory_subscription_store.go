package testutil

import (
	"context"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
)

// InMemorySubscriptionStore is an in-memory implementation of the subscription.Repository interface
type InMemorySubscriptionStore struct {
	mu            sync.Mutex
	subscriptions map[string]*subscription.Subscription
}

// NewInMemorySubscriptionStore creates a new instance of InMemorySubscriptionStore
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[id]
	if !exists {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

// Clear clears all subscriptions from the in-memory store
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions = make(map[string]*subscription.Subscription)
}
