package subscription

import (
	"time"

	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
)

// Subscription binds a customer to a plan for a billing period. Charges and
// commitments hang off the plan; usage is keyed by the customer.
type Subscription struct {
	ID string `db:"id" json:"id"`

	CustomerID string `db:"customer_id" json:"customer_id"`
	PlanID     string `db:"plan_id" json:"plan_id"`

	// ExternalCustomerID keys the customer's usage events
	ExternalCustomerID string `db:"external_customer_id" json:"external_customer_id"`

	Currency string `db:"currency" json:"currency"`

	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `db:"current_period_end" json:"current_period_end"`

	types.BaseModel
}

func (s *Subscription) Validate() error {
	if s.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Subscription must belong to a customer").
			Mark(ierr.ErrValidation)
	}
	if s.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Subscription must reference a plan").
			Mark(ierr.ErrValidation)
	}
	if s.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Subscription must carry a currency").
			Mark(ierr.ErrValidation)
	}
	if !s.CurrentPeriodEnd.After(s.CurrentPeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHint("Current period end must be after current period start").
			WithReportableDetails(map[string]any{
				"current_period_start": s.CurrentPeriodStart,
				"current_period_end":   s.CurrentPeriodEnd,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActive reports whether the subscription is billable
func (s *Subscription) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive
}
