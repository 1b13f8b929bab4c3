package coupon

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Coupon is a reusable discount definition
type Coupon struct {
	ID string `db:"id" json:"id"`

	Name string `db:"name" json:"name"`

	Type types.CouponType `db:"type" json:"type"`

	// AmountOff is the fixed discount for FIXED_AMOUNT coupons
	AmountOff decimal.Decimal `db:"amount_off" json:"amount_off"`

	// PercentageOff is the rate for PERCENTAGE coupons ex 20 means 20%
	PercentageOff decimal.Decimal `db:"percentage_off" json:"percentage_off"`

	Currency string `db:"currency" json:"currency"`

	Frequency types.CouponFrequency `db:"frequency" json:"frequency"`

	// FrequencyDuration is the number of billing periods a RECURRING coupon
	// keeps applying
	FrequencyDuration int `db:"frequency_duration" json:"frequency_duration"`

	// Reusable allows the coupon to be applied to more than one customer
	Reusable bool `db:"reusable" json:"reusable"`

	types.BaseModel
}

func (c *Coupon) Validate() error {
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if err := c.Frequency.Validate(); err != nil {
		return err
	}
	if c.Type == types.CouponTypeFixedAmount && c.AmountOff.LessThan(decimal.Zero) {
		return ierr.NewError("amount_off must not be negative").
			WithHint("Fixed amount coupons require a non negative amount").
			Mark(ierr.ErrValidation)
	}
	if c.Frequency == types.CouponFrequencyRecurring && c.FrequencyDuration <= 0 {
		return ierr.NewError("frequency_duration must be greater than 0").
			WithHint("Recurring coupons require a positive duration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CalculateDiscount returns the coupon's contribution against the currently
// remaining amount. Fixed coupons never discount more than what remains.
func (c *Coupon) CalculateDiscount(remaining decimal.Decimal) decimal.Decimal {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch c.Type {
	case types.CouponTypeFixedAmount:
		return decimal.Min(c.AmountOff, remaining)
	case types.CouponTypePercentage:
		return remaining.Mul(c.PercentageOff).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}
