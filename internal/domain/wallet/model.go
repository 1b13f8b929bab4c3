package wallet

import (
	"time"

	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet represents a prepaid credit balance for a customer. Balances are
// held both in currency units (Balance) and stored credits (CreditBalance),
// linked by the conversion rate.
type Wallet struct {
	ID         string `db:"id" json:"id"`
	CustomerID string `db:"customer_id" json:"customer_id"`
	Currency   string `db:"currency" json:"currency"`

	// Balance is the remaining value in currency units
	Balance decimal.Decimal `db:"balance" json:"balance"`

	// CreditBalance is the remaining value in stored credits
	CreditBalance decimal.Decimal `db:"credit_balance" json:"credit_balance"`

	WalletStatus types.WalletStatus `db:"wallet_status" json:"wallet_status"`

	// Priority orders consumption: lower numbers drain first, ties break on
	// creation time
	Priority int `db:"priority" json:"priority"`

	// ConversionRate is the currency value of one credit, so a rate of 2
	// means 1 credit = 2 dollars (assuming USD)
	ConversionRate decimal.Decimal `db:"conversion_rate" json:"conversion_rate"`

	// ExpiresAt is the optional expiry; nil wallets never expire
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`

	Name     string         `db:"name" json:"name,omitempty"`
	Metadata types.Metadata `db:"metadata" json:"metadata"`

	types.BaseModel
}

func (w *Wallet) Validate() error {
	if w.ConversionRate.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("conversion rate must be greater than 0").
			WithHint("Conversion rate must be a positive value").
			WithReportableDetails(map[string]any{
				"conversion_rate": w.ConversionRate,
			}).
			Mark(ierr.ErrValidation)
	}

	// Balance must equal credit_balance * conversion_rate
	expectedBalance := w.CreditBalance.Mul(w.ConversionRate)
	if !w.Balance.Equal(expectedBalance) {
		return ierr.NewError("balance and credit balance do not match").
			WithHint("Wallet balance and credit balance must agree after applying the conversion rate").
			WithReportableDetails(map[string]any{
				"balance":         w.Balance,
				"credit_balance":  w.CreditBalance,
				"conversion_rate": w.ConversionRate,
				"expected":        expectedBalance,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsExpired reports whether the wallet has passed its expiry at the given time
func (w *Wallet) IsExpired(now time.Time) bool {
	return w.ExpiresAt != nil && !w.ExpiresAt.After(now)
}

// CanBeConsumed reports whether the wallet is a candidate for consumption:
// active, unexpired and holding a positive balance.
func (w *Wallet) CanBeConsumed(now time.Time) bool {
	return w.WalletStatus == types.WalletStatusActive &&
		!w.IsExpired(now) &&
		w.Balance.GreaterThan(decimal.Zero)
}

// CreditsForAmount converts a currency amount into stored credits using the
// wallet's conversion rate.
func (w *Wallet) CreditsForAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(w.ConversionRate)
}
