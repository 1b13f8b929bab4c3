package service

import (
	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/shopspring/decimal"
)

// PricingService turns aggregated usage into a monetary amount for one charge.
// Calculators are pure: no repository access, no rounding beyond what decimal
// arithmetic implies. Rounding to currency precision happens at display time.
type PricingService interface {
	Calculate(params charge.Params, usage *UsageResult) decimal.Decimal
}

type pricingService struct {
	ServiceParams
}

func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{ServiceParams: params}
}

func (s *pricingService) Calculate(params charge.Params, usage *UsageResult) decimal.Decimal {
	if usage == nil {
		usage = &UsageResult{Value: decimal.Zero}
	}

	switch p := params.(type) {
	case charge.StandardParams:
		return calculateStandard(p, usage.Value)
	case charge.GraduatedParams:
		return calculateGraduated(p.Tiers, usage.Value)
	case charge.VolumeParams:
		return calculateVolume(p.Tiers, usage.Value)
	case charge.PackageParams:
		return calculatePackage(p, usage.Value)
	case charge.PercentageParams:
		return calculatePercentage(p, usage)
	case charge.GraduatedPercentageParams:
		return calculateGraduatedPercentage(p.Tiers, usage.Value)
	case charge.DynamicParams:
		// the aggregator already summed each event's own price property,
		// so the usage value is the amount
		return usage.Value
	case charge.CustomParams:
		return p.Amount
	default:
		return decimal.Zero
	}
}

// calculateStandard prices every unit at the same rate, then clamps the
// result into the configured [min, max] window. A zero bound is unset.
func calculateStandard(p charge.StandardParams, quantity decimal.Decimal) decimal.Decimal {
	amount := quantity.Mul(p.UnitAmount)

	if !p.MinAmount.IsZero() && amount.LessThan(p.MinAmount) {
		amount = p.MinAmount
	}
	if !p.MaxAmount.IsZero() && amount.GreaterThan(p.MaxAmount) {
		amount = p.MaxAmount
	}
	return amount
}

// calculateGraduated splits the quantity across tiers, pricing the units that
// fall into each tier at that tier's rate. A tier's flat amount is added only
// when the tier actually holds units.
func calculateGraduated(tiers []charge.Tier, quantity decimal.Decimal) decimal.Decimal {
	amount := decimal.Zero
	remaining := quantity

	for _, tier := range tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		units := remaining
		if capacity, bounded := tier.Capacity(); bounded && units.GreaterThan(capacity) {
			units = capacity
		}

		tierAmount := units.Mul(tier.UnitAmount)
		if tier.FlatAmount != nil && units.GreaterThan(decimal.Zero) {
			tierAmount = tierAmount.Add(*tier.FlatAmount)
		}
		amount = amount.Add(tierAmount)
		remaining = remaining.Sub(units)
	}

	return amount
}

// calculateVolume prices the whole quantity at the rate of the single tier
// the total falls into.
func calculateVolume(tiers []charge.Tier, quantity decimal.Decimal) decimal.Decimal {
	for _, tier := range tiers {
		if !tier.Contains(quantity) {
			continue
		}
		amount := quantity.Mul(tier.UnitAmount)
		if tier.FlatAmount != nil && quantity.GreaterThan(decimal.Zero) {
			amount = amount.Add(*tier.FlatAmount)
		}
		return amount
	}
	return decimal.Zero
}

// calculatePackage sells usage in whole bundles: any partial bundle is
// charged as a full one. No usage means no bundles.
func calculatePackage(p charge.PackageParams, quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	bundles := quantity.Div(p.PackageSize).Ceil()
	return bundles.Mul(p.Amount)
}

// calculatePercentage takes a rate of the aggregated monetary base plus an
// optional fixed fee per matched event.
func calculatePercentage(p charge.PercentageParams, usage *UsageResult) decimal.Decimal {
	amount := usage.Value.Mul(p.Rate).Div(decimal.NewFromInt(100))
	if !p.PerEventAmount.IsZero() {
		amount = amount.Add(p.PerEventAmount.Mul(decimal.NewFromInt(int64(usage.EventsCount))))
	}
	return amount
}

// calculateGraduatedPercentage splits the monetary base across tiers,
// applying each tier's percentage rate to the slice of the base it holds.
func calculateGraduatedPercentage(tiers []charge.Tier, base decimal.Decimal) decimal.Decimal {
	amount := decimal.Zero
	remaining := base

	for _, tier := range tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		slice := remaining
		if capacity, bounded := tier.Capacity(); bounded && slice.GreaterThan(capacity) {
			slice = capacity
		}

		tierAmount := slice.Mul(tier.Rate).Div(decimal.NewFromInt(100))
		if tier.FlatAmount != nil && slice.GreaterThan(decimal.Zero) {
			tierAmount = tierAmount.Add(*tier.FlatAmount)
		}
		amount = amount.Add(tierAmount)
		remaining = remaining.Sub(slice)
	}

	return amount
}
