package invoice

import (
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a billing document assembled from fees plus the discount, tax
// and prepaid adjustments computed against it.
type Invoice struct {
	ID            string `db:"id" json:"id"`
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`

	CustomerID     string `db:"customer_id" json:"customer_id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	InvoiceType types.InvoiceType `db:"invoice_type" json:"invoice_type"`
	Currency    string            `db:"currency" json:"currency"`

	PeriodStart time.Time `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time `db:"period_end" json:"period_end"`

	// Subtotal is the sum of fee amounts before any adjustment
	Subtotal decimal.Decimal `db:"subtotal" json:"subtotal"`

	// CouponsAmount is the total discount applied by coupon stacking
	CouponsAmount decimal.Decimal `db:"coupons_amount" json:"coupons_amount"`

	TaxAmount decimal.Decimal `db:"tax_amount" json:"tax_amount"`

	// PrepaidCreditAmount is the value already settled from wallet credits
	PrepaidCreditAmount decimal.Decimal `db:"prepaid_credit_amount" json:"prepaid_credit_amount"`

	// ProgressiveCreditAmount offsets what earlier progressive invoices in
	// the same period already billed
	ProgressiveCreditAmount decimal.Decimal `db:"progressive_credit_amount" json:"progressive_credit_amount"`

	Total decimal.Decimal `db:"total" json:"total"`

	// Voided invoices are excluded from all progressive billing math
	Voided bool `db:"voided" json:"voided"`

	Fees []*fee.Fee `db:"-" json:"fees,omitempty"`

	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Invoice must belong to a customer").
			Mark(ierr.ErrValidation)
	}
	if i.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Invoice must carry a currency").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}
	if !i.PeriodEnd.After(i.PeriodStart) {
		return ierr.NewError("invalid invoice period").
			WithHint("Period end must be after period start").
			WithReportableDetails(map[string]any{
				"period_start": i.PeriodStart,
				"period_end":   i.PeriodEnd,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ComputeTotal recomputes the invoice total from its components, clamped at
// zero so an invoice never goes negative.
func (i *Invoice) ComputeTotal() {
	total := i.Subtotal.
		Sub(i.CouponsAmount).
		Add(i.TaxAmount).
		Sub(i.ProgressiveCreditAmount).
		Sub(i.PrepaidCreditAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	i.Total = total
}
