package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Rate is a named tax percentage resolved by an external tax provider
type Rate struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Provider resolves the tax rates applicable to an amount. Rate resolution
// lives outside billing computation; the engine only applies what it is
// handed back.
type Provider interface {
	// ApplicableRates returns the rates to apply for the given customer and
	// plan. An empty slice means no tax.
	ApplicableRates(ctx context.Context, customerID, planID string) ([]*Rate, error)
}

// CalculateTax applies each rate independently to the same base amount and
// sums the results. Rates never compound on each other.
func CalculateTax(base decimal.Decimal, rates []*Rate) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range rates {
		total = total.Add(base.Mul(r.Percentage).Div(decimal.NewFromInt(100)))
	}
	return total
}
