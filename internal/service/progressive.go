package service

import (
	"context"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// ProgressiveBillingService issues mid-period invoices that bill cumulative
// usage from period start, crediting back what earlier progressive invoices
// in the same period already billed. Voided invoices drop out of the credit
// at read time, so a void retroactively increases the next invoice.
type ProgressiveBillingService interface {
	GenerateProgressiveInvoice(ctx context.Context, subscriptionID string, asOf time.Time) (*invoice.Invoice, error)
	CalculateProgressiveBillingCredit(ctx context.Context, sub *subscription.Subscription) (decimal.Decimal, error)
	VoidInvoice(ctx context.Context, invoiceID string) error
}

type progressiveBillingService struct {
	ServiceParams
	billingService BillingService
	invoiceCalc    InvoiceCalculationService
}

func NewProgressiveBillingService(params ServiceParams) ProgressiveBillingService {
	return &progressiveBillingService{
		ServiceParams:  params,
		billingService: NewBillingService(params),
		invoiceCalc:    NewInvoiceCalculationService(params),
	}
}

func (s *progressiveBillingService) GenerateProgressiveInvoice(ctx context.Context, subscriptionID string, asOf time.Time) (*invoice.Invoice, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if asOf.Before(sub.CurrentPeriodStart) || asOf.After(sub.CurrentPeriodEnd) {
		return nil, ierr.NewError("as_of is outside the current billing period").
			WithHint("Progressive invoices can only be generated inside the current period").
			WithReportableDetails(map[string]any{
				"as_of":                asOf,
				"current_period_start": sub.CurrentPeriodStart,
				"current_period_end":   sub.CurrentPeriodEnd,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// bill everything from period start so late events are always picked up
	result, err := s.billingService.CalculateFees(ctx, sub, sub.CurrentPeriodStart, asOf)
	if err != nil {
		return nil, err
	}

	credit, err := s.CalculateProgressiveBillingCredit(ctx, sub)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:                      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:           types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		CustomerID:              sub.CustomerID,
		SubscriptionID:          sub.ID,
		InvoiceType:             types.InvoiceTypeProgressiveBilling,
		Currency:                result.Currency,
		PeriodStart:             sub.CurrentPeriodStart,
		PeriodEnd:               asOf,
		Subtotal:                result.Subtotal,
		ProgressiveCreditAmount: credit,
		Fees:                    result.Fees,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}

	applied, err := s.invoiceCalc.ApplyCoupons(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceCalc.CalculateTaxes(ctx, inv, sub.PlanID); err != nil {
		return nil, err
	}
	s.invoiceCalc.ComputeTotals(inv)

	// amounts already collected are never re-billed, so an invoice that
	// would add nothing is refused rather than persisted at zero
	if inv.Total.LessThanOrEqual(decimal.Zero) {
		return nil, ierr.NewError("nothing new to bill").
			WithHint("Cumulative charges do not exceed what earlier progressive invoices collected").
			WithReportableDetails(map[string]any{
				"subscription_id":    sub.ID,
				"subtotal":           inv.Subtotal,
				"progressive_credit": credit,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	for _, f := range inv.Fees {
		f.InvoiceID = inv.ID
	}
	if err := s.FeeRepo.CreateFees(ctx, inv.Fees); err != nil {
		return nil, err
	}
	if err := s.invoiceCalc.ConsumeAppliedCoupons(ctx, applied); err != nil {
		return nil, err
	}

	s.Logger.Infow("generated progressive invoice",
		"invoice_id", inv.ID,
		"subscription_id", sub.ID,
		"as_of", asOf,
		"subtotal", inv.Subtotal,
		"progressive_credit", credit,
		"total", inv.Total,
	)

	return inv, nil
}

// CalculateProgressiveBillingCredit sums the totals of the non voided
// progressive invoices issued so far in the subscription's current period.
func (s *progressiveBillingService) CalculateProgressiveBillingCredit(ctx context.Context, sub *subscription.Subscription) (decimal.Decimal, error) {
	invoices, err := s.InvoiceRepo.ListProgressiveBySubscription(ctx, sub.ID, sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return decimal.Zero, err
	}

	credit := decimal.Zero
	for _, inv := range invoices {
		credit = credit.Add(inv.Total)
	}
	return credit, nil
}

func (s *progressiveBillingService) VoidInvoice(ctx context.Context, invoiceID string) error {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Voided {
		return ierr.NewError("invoice is already voided").
			WithHint("Invoice has already been voided").
			WithReportableDetails(map[string]any{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.Voided = true
	inv.UpdatedAt = time.Now().UTC()
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	s.Logger.Infow("voided invoice", "invoice_id", invoiceID)
	return nil
}
