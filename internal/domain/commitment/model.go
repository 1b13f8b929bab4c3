package commitment

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Commitment is a plan level guaranteed minimum. When a period's usage based
// fees fall short of the amount, the assembler emits a true-up fee for the
// shortfall.
type Commitment struct {
	ID string `db:"id" json:"id"`

	PlanID string `db:"plan_id" json:"plan_id"`

	CommitmentType types.CommitmentType `db:"commitment_type" json:"commitment_type"`

	// Amount is the guaranteed minimum in the plan currency
	Amount decimal.Decimal `db:"amount" json:"amount"`

	// InvoiceDisplayName labels the true-up fee on invoices
	InvoiceDisplayName string `db:"invoice_display_name" json:"invoice_display_name"`

	types.BaseModel
}

// DisplayName returns the invoice label for the true-up fee
func (c *Commitment) DisplayName() string {
	if c.InvoiceDisplayName != "" {
		return c.InvoiceDisplayName
	}
	return types.DefaultCommitmentDescription
}

func (c *Commitment) Validate() error {
	if c.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Commitment plan ID is required").
			Mark(ierr.ErrValidation)
	}
	if c.Amount.LessThan(decimal.Zero) {
		return ierr.NewError("amount must not be negative").
			WithHint("Commitment amount must not be negative").
			WithReportableDetails(map[string]any{
				"amount": c.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
