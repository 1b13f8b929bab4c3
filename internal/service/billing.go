package service

import (
	"context"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// FeeCalculationResult is the output of one fee assembly run
type FeeCalculationResult struct {
	Fees     []*fee.Fee
	Subtotal decimal.Decimal
	Currency string
}

// BillingService assembles the fees of a subscription for a billing window:
// one fee per charge (or charge filter segment) with usage, plus commitment
// true-ups. Charges that cannot be priced contribute nothing instead of
// failing the run.
type BillingService interface {
	CalculateFees(ctx context.Context, sub *subscription.Subscription, periodStart, periodEnd time.Time) (*FeeCalculationResult, error)
}

type billingService struct {
	ServiceParams
	usageService   UsageService
	pricingService PricingService
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams:  params,
		usageService:   NewUsageService(params),
		pricingService: NewPricingService(params),
	}
}

func (s *billingService) CalculateFees(ctx context.Context, sub *subscription.Subscription, periodStart, periodEnd time.Time) (*FeeCalculationResult, error) {
	if !sub.IsActive() {
		return nil, ierr.NewError("subscription is not active").
			WithHint("Fees can only be calculated for active subscriptions").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if !periodEnd.After(periodStart) {
		return nil, ierr.NewError("invalid billing window").
			WithHint("Period end must be after period start").
			Mark(ierr.ErrValidation)
	}

	currency := sub.Currency
	if currency == "" {
		currency = s.Config.Billing.DefaultCurrency
	}

	charges, err := s.ChargeRepo.GetChargesByPlanID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	fees := make([]*fee.Fee, 0, len(charges))
	for _, c := range charges {
		chargeFees, err := s.calculateChargeFees(ctx, sub, c, periodStart, periodEnd, currency)
		if err != nil {
			return nil, err
		}
		fees = append(fees, chargeFees...)
	}

	// commitment true-ups compare the usage based total against the
	// guaranteed minimum
	chargeTotal := decimal.Zero
	for _, f := range fees {
		if f.FeeType == types.FeeTypeCharge {
			chargeTotal = chargeTotal.Add(f.Amount)
		}
	}

	commitments, err := s.CommitRepo.GetCommitmentsByPlanID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	for _, cm := range commitments {
		if cm.CommitmentType != types.CommitmentTypeMinimum {
			continue
		}
		shortfall := cm.Amount.Sub(chargeTotal)
		if shortfall.LessThanOrEqual(decimal.Zero) {
			continue
		}
		fees = append(fees, &fee.Fee{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
			CustomerID:     sub.CustomerID,
			SubscriptionID: sub.ID,
			FeeType:        types.FeeTypeCommitment,
			Amount:         shortfall,
			Currency:       currency,
			Description:    cm.DisplayName(),
			BaseModel:      types.GetDefaultBaseModel(ctx),
		})
	}

	subtotal := decimal.Zero
	for _, f := range fees {
		subtotal = subtotal.Add(f.Amount)
	}

	s.Logger.Infow("calculated fees",
		"subscription_id", sub.ID,
		"period_start", periodStart,
		"period_end", periodEnd,
		"fees", len(fees),
		"subtotal", subtotal,
	)

	return &FeeCalculationResult{
		Fees:     fees,
		Subtotal: subtotal,
		Currency: currency,
	}, nil
}

// calculateChargeFees computes the fees of a single charge: one fee for an
// unfiltered charge, one per surviving filter segment otherwise. Charges with
// broken pricing configuration are skipped with a warning.
func (s *billingService) calculateChargeFees(ctx context.Context, sub *subscription.Subscription, c *charge.Charge, periodStart, periodEnd time.Time, currency string) ([]*fee.Fee, error) {
	// a charge without a metric is a flat subscription fee
	if c.MeterID == "" {
		return s.calculateFlatFee(ctx, sub, c, currency)
	}

	m, err := s.MeterRepo.GetMeter(ctx, c.MeterID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("skipping charge with missing meter",
				"charge_id", c.ID,
				"meter_id", c.MeterID,
			)
			return nil, nil
		}
		return nil, err
	}

	if len(c.Filters) == 0 {
		f, err := s.calculateUsageFee(ctx, sub, c, nil, m, nil, periodStart, periodEnd, currency)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, nil
		}
		return []*fee.Fee{f}, nil
	}

	fees := make([]*fee.Fee, 0, len(c.Filters))
	for i := range c.Filters {
		cf := &c.Filters[i]
		filters, ok := s.resolveFilterValues(c, cf, m)
		if !ok {
			continue
		}
		f, err := s.calculateUsageFee(ctx, sub, c, cf, m, filters, periodStart, periodEnd, currency)
		if err != nil {
			return nil, err
		}
		if f != nil {
			fees = append(fees, f)
		}
	}
	return fees, nil
}

// resolveFilterValues prunes charge filter values whose key or value is
// outside the metric's filter domain. A segment left with no constraints
// matches nothing.
func (s *billingService) resolveFilterValues(c *charge.Charge, cf *charge.Filter, m *meter.Meter) (map[string]string, bool) {
	filters := make(map[string]string, len(cf.Values))
	for _, fv := range cf.Values {
		mf, ok := m.GetFilter(fv.Key)
		if !ok {
			s.Logger.Warnw("pruning orphaned charge filter value",
				"charge_id", c.ID,
				"filter_id", cf.ID,
				"key", fv.Key,
			)
			continue
		}
		if len(mf.Values) > 0 {
			allowed := false
			for _, v := range mf.Values {
				if v == fv.Value {
					allowed = true
					break
				}
			}
			if !allowed {
				s.Logger.Warnw("pruning charge filter value outside meter domain",
					"charge_id", c.ID,
					"filter_id", cf.ID,
					"key", fv.Key,
					"value", fv.Value,
				)
				continue
			}
		}
		filters[fv.Key] = fv.Value
	}

	if len(filters) == 0 {
		return nil, false
	}
	return filters, true
}

func (s *billingService) calculateFlatFee(ctx context.Context, sub *subscription.Subscription, c *charge.Charge, currency string) ([]*fee.Fee, error) {
	params, err := c.Params()
	if err != nil {
		s.Logger.Warnw("skipping flat charge with invalid pricing",
			"charge_id", c.ID,
			"charge_model", c.ChargeModel,
			"error", err,
		)
		return nil, nil
	}

	one := decimal.NewFromInt(1)
	amount := s.pricingService.Calculate(params, &UsageResult{Value: one}).
		Round(types.GetCurrencyPrecision(currency))

	f := &fee.Fee{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		ChargeID:       c.ID,
		FeeType:        types.FeeTypeSubscription,
		Amount:         amount,
		Currency:       currency,
		Units:          one,
		Description:    c.InvoiceDisplayName,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if f.IsEmpty() {
		return nil, nil
	}
	return []*fee.Fee{f}, nil
}

// calculateUsageFee prices one charge (or one of its filter segments) over
// the window. Returns nil for empty fees and unpriceable configurations.
func (s *billingService) calculateUsageFee(
	ctx context.Context,
	sub *subscription.Subscription,
	c *charge.Charge,
	cf *charge.Filter,
	m *meter.Meter,
	filters map[string]string,
	periodStart, periodEnd time.Time,
	currency string,
) (*fee.Fee, error) {
	params, err := c.FilterParams(cf)
	if err != nil {
		s.Logger.Warnw("skipping charge with invalid pricing",
			"charge_id", c.ID,
			"charge_model", c.ChargeModel,
			"error", err,
		)
		return nil, nil
	}

	usageParams := &UsageParams{
		ExternalCustomerID: sub.ExternalCustomerID,
		EventName:          m.EventName,
		StartTime:          periodStart,
		EndTime:            periodEnd,
		Filters:            filters,
	}

	// dynamic charges carry the price on each event: sum that property
	// instead of the metric's own aggregation
	units := decimal.Zero
	if dp, ok := params.(charge.DynamicParams); ok {
		usageParams.Aggregation = &meter.Aggregation{
			Type:  types.AggregationSum,
			Field: dp.PricePropertyKey,
		}
	}

	usage, err := s.usageService.GetUsage(ctx, usageParams)
	if err != nil {
		return nil, err
	}

	if _, ok := params.(charge.DynamicParams); ok {
		units = decimal.NewFromInt(int64(usage.EventsCount))
	} else {
		units = usage.Value
	}

	// calculators are exact; fees settle at currency precision
	amount := s.pricingService.Calculate(params, usage).
		Round(types.GetCurrencyPrecision(currency))

	description := c.InvoiceDisplayName
	filterID := ""
	if cf != nil {
		filterID = cf.ID
		if cf.InvoiceDisplayName != "" {
			description = cf.InvoiceDisplayName
		}
	}

	f := &fee.Fee{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		ChargeID:       c.ID,
		FilterID:       filterID,
		FeeType:        types.FeeTypeCharge,
		Amount:         amount,
		Currency:       currency,
		Units:          units,
		EventsCount:    usage.EventsCount,
		Description:    description,
		MetricCode:     m.EventName,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if f.IsEmpty() {
		return nil, nil
	}
	return f, nil
}
