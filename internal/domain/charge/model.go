package charge

import (
	"math"

	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Charge is a plan's pricing rule for one metric. A charge with an empty
// MeterID is a flat subscription fee with no usage dependency.
type Charge struct {
	ID string `db:"id" json:"id"`

	// PlanID is the plan this charge belongs to
	PlanID string `db:"plan_id" json:"plan_id"`

	// MeterID is the billable metric the charge prices. Empty means the
	// charge is a flat subscription fee.
	MeterID string `db:"meter_id" json:"meter_id"`

	// ChargeModel selects the pricing function applied to the usage
	ChargeModel types.ChargeModel `db:"charge_model" json:"charge_model"`

	// InvoiceDisplayName is the description carried onto computed fees
	InvoiceDisplayName string `db:"invoice_display_name" json:"invoice_display_name"`

	// Properties hold the model specific pricing parameters
	Properties Properties `db:"properties,jsonb" json:"properties"`

	// Filters are optional sub segmentations of the charge, each with its
	// own property overrides
	Filters []Filter `db:"filters,jsonb" json:"filters"`

	types.BaseModel
}

// Properties are the raw pricing parameters of a charge. Which fields are
// read depends on the charge model; Params decodes them into a validated
// per model struct.
type Properties struct {
	// Amount is the unit price (STANDARD), bundle price (PACKAGE) or
	// configured amount (CUSTOM)
	Amount decimal.Decimal `json:"amount"`

	// MinAmount / MaxAmount clamp STANDARD amounts. Zero means unset.
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`

	// Rate is the percentage rate for PERCENTAGE charges
	Rate decimal.Decimal `json:"rate"`

	// PerEventAmount is the optional fixed fee per event for PERCENTAGE charges
	PerEventAmount decimal.Decimal `json:"per_event_amount"`

	// PackageSize is the bundle size for PACKAGE charges
	PackageSize decimal.Decimal `json:"package_size"`

	// Tiers are the ranges for GRADUATED, VOLUME and GRADUATED_PERCENTAGE charges
	Tiers []Tier `json:"tiers"`

	// PricePropertyKey is the event property holding the per event unit
	// price for DYNAMIC charges
	PricePropertyKey string `json:"price_property_key"`
}

// Tier is one range [FromValue, ToValue) of a tiered schedule. The last
// tier has a nil ToValue and is open ended.
type Tier struct {
	FromValue decimal.Decimal  `json:"from_value"`
	ToValue   *decimal.Decimal `json:"to_value"`

	// UnitAmount is the per unit price for quantity tiers
	UnitAmount decimal.Decimal `json:"unit_amount"`

	// FlatAmount is added on top of unit_amount*quantity for the tier.
	// It covers cases in banking like 2.7% + 5c.
	FlatAmount *decimal.Decimal `json:"flat_amount,omitempty"`

	// Rate is the percentage rate for GRADUATED_PERCENTAGE tiers
	Rate decimal.Decimal `json:"rate"`
}

// upperBound treats a nil ToValue as the maximum float for sorting only
func (t Tier) upperBound() float64 {
	if t.ToValue != nil {
		return t.ToValue.InexactFloat64()
	}
	return math.MaxFloat64
}

// Capacity returns the quantity a bounded tier can hold, or false for the
// open ended tier.
func (t Tier) Capacity() (decimal.Decimal, bool) {
	if t.ToValue == nil {
		return decimal.Zero, false
	}
	return t.ToValue.Sub(t.FromValue), true
}

// Contains reports whether the quantity falls inside the tier's half open range
func (t Tier) Contains(quantity decimal.Decimal) bool {
	if quantity.LessThan(t.FromValue) {
		return false
	}
	return t.ToValue == nil || quantity.LessThan(*t.ToValue)
}

// Filter is a sub segmentation of a charge keyed on metric filter values,
// with its own property overrides.
type Filter struct {
	ID string `json:"id"`

	// Values are the key/value constraints of this filter. Each references
	// a metric filter key; orphaned references are pruned before matching.
	Values []FilterValue `json:"values"`

	// Properties override the charge's properties for this segment when set
	Properties *Properties `json:"properties,omitempty"`

	// InvoiceDisplayName overrides the charge display name for this segment
	InvoiceDisplayName string `json:"invoice_display_name"`
}

// FilterValue pins one event property to an exact value
type FilterValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EffectiveProperties returns the filter's override properties when present,
// the charge's own otherwise.
func (c *Charge) EffectiveProperties(f *Filter) Properties {
	if f != nil && f.Properties != nil {
		return *f.Properties
	}
	return c.Properties
}
