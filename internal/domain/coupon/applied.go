package coupon

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// AppliedCoupon is a customer scoped activation of a coupon, with its own
// remaining duration counter and termination state. It is mutated by
// consumption only, never by discount math.
type AppliedCoupon struct {
	ID string `db:"id" json:"id"`

	CouponID   string `db:"coupon_id" json:"coupon_id"`
	CustomerID string `db:"customer_id" json:"customer_id"`

	AppliedStatus types.AppliedCouponStatus `db:"applied_status" json:"applied_status"`

	// RemainingDuration counts down for RECURRING coupons; ignored otherwise
	RemainingDuration int `db:"remaining_duration" json:"remaining_duration"`

	// Coupon is the hydrated definition, attached by the repository
	Coupon *Coupon `db:"-" json:"coupon,omitempty"`

	types.BaseModel
}

// IsActive reports whether the applied coupon may still contribute discounts
func (ac *AppliedCoupon) IsActive() bool {
	return ac.AppliedStatus == types.AppliedCouponStatusActive
}

// CalculateDiscount delegates to the underlying coupon definition
func (ac *AppliedCoupon) CalculateDiscount(remaining decimal.Decimal) decimal.Decimal {
	if ac.Coupon == nil || !ac.IsActive() {
		return decimal.Zero
	}
	return ac.Coupon.CalculateDiscount(remaining)
}

// Consume advances the applied coupon's lifecycle after it contributed to an
// invoice: ONCE terminates, RECURRING decrements and terminates at zero,
// FOREVER never changes state.
func (ac *AppliedCoupon) Consume() error {
	if !ac.IsActive() {
		return ierr.NewError("applied coupon is not active").
			WithHint("Only active coupons can be consumed").
			WithReportableDetails(map[string]any{
				"applied_coupon_id": ac.ID,
				"status":            ac.AppliedStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if ac.Coupon == nil {
		return ierr.NewError("applied coupon has no coupon definition").
			WithHint("Coupon definition is missing").
			Mark(ierr.ErrNotFound)
	}

	switch ac.Coupon.Frequency {
	case types.CouponFrequencyOnce:
		ac.AppliedStatus = types.AppliedCouponStatusTerminated
	case types.CouponFrequencyRecurring:
		ac.RemainingDuration--
		if ac.RemainingDuration <= 0 {
			ac.AppliedStatus = types.AppliedCouponStatusTerminated
		}
	case types.CouponFrequencyForever:
		// no state change
	}
	return nil
}
