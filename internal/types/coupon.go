package types

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/samber/lo"
)

// CouponType is the discount model of a coupon
type CouponType string

const (
	CouponTypeFixedAmount CouponType = "FIXED_AMOUNT"
	CouponTypePercentage  CouponType = "PERCENTAGE"
)

func (t CouponType) Validate() error {
	allowedValues := []string{
		string(CouponTypeFixedAmount),
		string(CouponTypePercentage),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid coupon type").
			WithHint("Invalid coupon type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CouponFrequency controls how many billing periods a coupon keeps applying
type CouponFrequency string

const (
	CouponFrequencyOnce      CouponFrequency = "ONCE"
	CouponFrequencyRecurring CouponFrequency = "RECURRING"
	CouponFrequencyForever   CouponFrequency = "FOREVER"
)

func (f CouponFrequency) Validate() error {
	allowedValues := []string{
		string(CouponFrequencyOnce),
		string(CouponFrequencyRecurring),
		string(CouponFrequencyForever),
	}
	if !lo.Contains(allowedValues, string(f)) {
		return ierr.NewError("invalid coupon frequency").
			WithHint("Invalid coupon frequency").
			WithReportableDetails(map[string]any{
				"allowed":   allowedValues,
				"frequency": f,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AppliedCouponStatus is the lifecycle state of a customer scoped coupon
type AppliedCouponStatus string

const (
	AppliedCouponStatusActive     AppliedCouponStatus = "ACTIVE"
	AppliedCouponStatusTerminated AppliedCouponStatus = "TERMINATED"
)
