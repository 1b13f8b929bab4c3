package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/coupon"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
)

// InMemoryCouponStore is an in-memory implementation of the coupon.Repository interface
type InMemoryCouponStore struct {
	mu      sync.Mutex
	coupons map[string]*coupon.Coupon
	applied map[string]*coupon.AppliedCoupon
}

// NewInMemoryCouponStore creates a new instance of InMemoryCouponStore
func NewInMemoryCouponStore() *InMemoryCouponStore {
	return &InMemoryCouponStore{
		coupons: make(map[string]*coupon.Coupon),
		applied: make(map[string]*coupon.AppliedCoupon),
	}
}

func (s *InMemoryCouponStore) CreateCoupon(ctx context.Context, c *coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coupons[c.ID] = c
	return nil
}

func (s *InMemoryCouponStore) GetCoupon(ctx context.Context, id string) (*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.coupons[id]
	if !exists {
		return nil, ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]interface{}{
				"coupon_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryCouponStore) CreateAppliedCoupon(ctx context.Context, ac *coupon.AppliedCoupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied[ac.ID] = ac
	return nil
}

func (s *InMemoryCouponStore) GetAppliedCoupon(ctx context.Context, id string) (*coupon.AppliedCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, exists := s.applied[id]
	if !exists {
		return nil, ierr.NewError("applied coupon not found").
			WithHint("Applied coupon not found").
			WithReportableDetails(map[string]interface{}{
				"applied_coupon_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ac, nil
}

// GetActiveAppliedCoupons returns the customer's active applied coupons in
// application order with the coupon definition hydrated.
func (s *InMemoryCouponStore) GetActiveAppliedCoupons(ctx context.Context, customerID string) ([]*coupon.AppliedCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := make([]*coupon.AppliedCoupon, 0)
	for _, ac := range s.applied {
		if ac.CustomerID != customerID || !ac.IsActive() {
			continue
		}
		if ac.Coupon == nil {
			if c, exists := s.coupons[ac.CouponID]; exists {
				ac.Coupon = c
			}
		}
		applied = append(applied, ac)
	}

	sort.SliceStable(applied, func(i, j int) bool {
		if !applied[i].CreatedAt.Equal(applied[j].CreatedAt) {
			return applied[i].CreatedAt.Before(applied[j].CreatedAt)
		}
		return applied[i].ID < applied[j].ID
	})

	return applied, nil
}

func (s *InMemoryCouponStore) UpdateAppliedCoupon(ctx context.Context, ac *coupon.AppliedCoupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applied[ac.ID]; !exists {
		return ierr.NewError("applied coupon not found").
			WithHint("Applied coupon not found").
			WithReportableDetails(map[string]interface{}{
				"applied_coupon_id": ac.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	s.applied[ac.ID] = ac
	return nil
}

// Clear clears all coupons and applied coupons from the in-memory store
func (s *InMemoryCouponStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coupons = make(map[string]*coupon.Coupon)
	s.applied = make(map[string]*coupon.AppliedCoupon)
}
