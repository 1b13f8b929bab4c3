package types

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/samber/lo"
)

// InvoiceType distinguishes end-of-period invoices from mid-period
// progressive billing invoices
type InvoiceType string

const (
	InvoiceTypeSubscription       InvoiceType = "SUBSCRIPTION"
	InvoiceTypeProgressiveBilling InvoiceType = "PROGRESSIVE_BILLING"
)

func (t InvoiceType) Validate() error {
	allowedValues := []string{
		string(InvoiceTypeSubscription),
		string(InvoiceTypeProgressiveBilling),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid invoice type").
			WithHint("Invalid invoice type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)
