package service

import (
	"context"

	"github.com/boxbilling/bxb-sub002/internal/domain/coupon"
	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	"github.com/boxbilling/bxb-sub002/internal/domain/tax"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceCalculationService layers discounts, taxes and the final total onto
// an assembled invoice. Discount math never mutates coupon state; consumption
// is a separate step taken only once the invoice is committed.
type InvoiceCalculationService interface {
	// ApplyCoupons folds the customer's active coupons over the invoice
	// subtotal in application order and sets CouponsAmount. It returns the
	// applied coupons that contributed, for later consumption.
	ApplyCoupons(ctx context.Context, inv *invoice.Invoice) ([]*coupon.AppliedCoupon, error)

	// ConsumeAppliedCoupons advances the lifecycle of coupons that
	// contributed to a committed invoice
	ConsumeAppliedCoupons(ctx context.Context, applied []*coupon.AppliedCoupon) error

	// CalculateTaxes resolves and applies tax rates on the discounted
	// subtotal and sets TaxAmount
	CalculateTaxes(ctx context.Context, inv *invoice.Invoice, planID string) error

	// ComputeTotals recomputes the invoice total from its parts
	ComputeTotals(inv *invoice.Invoice)
}

type invoiceCalculationService struct {
	ServiceParams
}

func NewInvoiceCalculationService(params ServiceParams) InvoiceCalculationService {
	return &invoiceCalculationService{ServiceParams: params}
}

func (s *invoiceCalculationService) ApplyCoupons(ctx context.Context, inv *invoice.Invoice) ([]*coupon.AppliedCoupon, error) {
	appliedCoupons, err := s.CouponRepo.GetActiveAppliedCoupons(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}

	// each coupon discounts what the earlier ones left over, so stacked
	// discounts can never exceed the subtotal
	remaining := inv.Subtotal
	totalDiscount := decimal.Zero
	contributed := make([]*coupon.AppliedCoupon, 0, len(appliedCoupons))

	for _, ac := range appliedCoupons {
		if ac.Coupon == nil {
			continue
		}
		if ac.Coupon.Type == types.CouponTypeFixedAmount &&
			!types.IsMatchingCurrency(ac.Coupon.Currency, inv.Currency) {
			s.Logger.Warnw("skipping coupon with mismatched currency",
				"applied_coupon_id", ac.ID,
				"coupon_currency", ac.Coupon.Currency,
				"invoice_currency", inv.Currency,
			)
			continue
		}

		discount := ac.CalculateDiscount(remaining)
		if discount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		remaining = remaining.Sub(discount)
		totalDiscount = totalDiscount.Add(discount)
		contributed = append(contributed, ac)
	}

	inv.CouponsAmount = totalDiscount

	s.Logger.Debugw("applied coupons",
		"invoice_id", inv.ID,
		"customer_id", inv.CustomerID,
		"coupons", len(contributed),
		"coupons_amount", totalDiscount,
	)

	return contributed, nil
}

func (s *invoiceCalculationService) ConsumeAppliedCoupons(ctx context.Context, applied []*coupon.AppliedCoupon) error {
	for _, ac := range applied {
		if err := ac.Consume(); err != nil {
			return err
		}
		if err := s.CouponRepo.UpdateAppliedCoupon(ctx, ac); err != nil {
			return err
		}
	}
	return nil
}

func (s *invoiceCalculationService) CalculateTaxes(ctx context.Context, inv *invoice.Invoice, planID string) error {
	if s.TaxProvider == nil {
		inv.TaxAmount = decimal.Zero
		return nil
	}

	rates, err := s.TaxProvider.ApplicableRates(ctx, inv.CustomerID, planID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to resolve applicable tax rates").
			Mark(ierr.ErrSystem)
	}

	// tax applies to what is left after discounts
	base := inv.Subtotal.Sub(inv.CouponsAmount)
	inv.TaxAmount = tax.CalculateTax(base, rates)
	return nil
}

func (s *invoiceCalculationService) ComputeTotals(inv *invoice.Invoice) {
	inv.ComputeTotal()
}
