package coupon

import "context"

// Repository defines the contract for coupons and their customer scoped
// applications. GetActiveAppliedCoupons returns applied coupons in
// application order (first applied first) with the Coupon field hydrated.
type Repository interface {
	CreateCoupon(ctx context.Context, c *Coupon) error
	GetCoupon(ctx context.Context, id string) (*Coupon, error)

	CreateAppliedCoupon(ctx context.Context, ac *AppliedCoupon) error
	GetAppliedCoupon(ctx context.Context, id string) (*AppliedCoupon, error)
	GetActiveAppliedCoupons(ctx context.Context, customerID string) ([]*AppliedCoupon, error)
	UpdateAppliedCoupon(ctx context.Context, ac *AppliedCoupon) error
}
