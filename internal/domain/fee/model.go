package fee

import (
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Fee is one computed monetary line item for one charge or commitment in one
// billing period. Fees are created fresh per billing run and never mutated
// after creation.
type Fee struct {
	ID string `db:"id" json:"id"`

	CustomerID     string `db:"customer_id" json:"customer_id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	InvoiceID      string `db:"invoice_id" json:"invoice_id,omitempty"`

	// ChargeID is empty for commitment true-up fees
	ChargeID string `db:"charge_id" json:"charge_id,omitempty"`

	// FilterID identifies the charge filter segment the fee was computed
	// for, empty for unfiltered charges
	FilterID string `db:"filter_id" json:"filter_id,omitempty"`

	FeeType types.FeeType `db:"fee_type" json:"fee_type"`

	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Currency string          `db:"currency" json:"currency"`

	// Units is the billed quantity; for dynamic charges this is the raw
	// events count rather than the aggregated usage value
	Units decimal.Decimal `db:"units" json:"units"`

	// EventsCount is the raw matching event count regardless of aggregation
	EventsCount int `db:"events_count" json:"events_count"`

	Description string `db:"description" json:"description"`

	// MetricCode is the event name of the billed metric, empty for flat and
	// commitment fees
	MetricCode string `db:"metric_code" json:"metric_code,omitempty"`

	types.BaseModel
}

// IsEmpty reports whether the fee carries no amount and no units. Empty fees
// are never materialized: a no-usage period produces no row.
func (f *Fee) IsEmpty() bool {
	return f.Amount.IsZero() && f.Units.IsZero()
}
