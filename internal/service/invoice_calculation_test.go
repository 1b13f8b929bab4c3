package service

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/coupon"
	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	"github.com/boxbilling/bxb-sub002/internal/domain/tax"
	"github.com/boxbilling/bxb-sub002/internal/testutil"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceCalculationSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceCalculationService
}

func TestInvoiceCalculationService(t *testing.T) {
	suite.Run(t, new(InvoiceCalculationSuite))
}

func (s *InvoiceCalculationSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceCalculationService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		CouponRepo:  s.GetStores().CouponRepo,
		TaxProvider: s.GetTaxProvider(),
	})
}

func (s *InvoiceCalculationSuite) newInvoice(subtotal string) *invoice.Invoice {
	return &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerID:     "cust-1",
		SubscriptionID: "sub-1",
		InvoiceType:    types.InvoiceTypeSubscription,
		Currency:       "usd",
		Subtotal:       decimal.RequireFromString(subtotal),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
}

// applyCoupon creates a coupon and its customer application; appliedAt
// staggers CreatedAt so application order is deterministic.
func (s *InvoiceCalculationSuite) applyCoupon(c *coupon.Coupon, appliedAt time.Time) *coupon.AppliedCoupon {
	if c.ID == "" {
		c.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COUPON)
	}
	if c.Frequency == "" {
		c.Frequency = types.CouponFrequencyOnce
	}
	s.NoError(s.GetStores().CouponRepo.CreateCoupon(s.GetContext(), c))

	ac := &coupon.AppliedCoupon{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_APPLIED_COUPON),
		CouponID:      c.ID,
		CustomerID:    "cust-1",
		AppliedStatus: types.AppliedCouponStatusActive,
		Coupon:        c,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	if c.Frequency == types.CouponFrequencyRecurring {
		ac.RemainingDuration = c.FrequencyDuration
	}
	ac.CreatedAt = appliedAt
	s.NoError(s.GetStores().CouponRepo.CreateAppliedCoupon(s.GetContext(), ac))
	return ac
}

func (s *InvoiceCalculationSuite) TestFixedThenPercentageStacking() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.applyCoupon(&coupon.Coupon{
		Name:      "10 off",
		Type:      types.CouponTypeFixedAmount,
		AmountOff: decimal.RequireFromString("10.00"),
		Currency:  "usd",
	}, base)
	s.applyCoupon(&coupon.Coupon{
		Name:          "20 percent",
		Type:          types.CouponTypePercentage,
		PercentageOff: decimal.RequireFromString("20"),
	}, base.Add(time.Minute))

	inv := s.newInvoice("100.00")
	applied, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)
	s.Len(applied, 2)

	// 10 off 100, then 20% of the remaining 90
	s.True(decimal.RequireFromString("28").Equal(inv.CouponsAmount), "got %s", inv.CouponsAmount)
}

func (s *InvoiceCalculationSuite) TestOrderingChangesTheDiscount() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.applyCoupon(&coupon.Coupon{
		Name:          "20 percent",
		Type:          types.CouponTypePercentage,
		PercentageOff: decimal.RequireFromString("20"),
	}, base)
	s.applyCoupon(&coupon.Coupon{
		Name:      "10 off",
		Type:      types.CouponTypeFixedAmount,
		AmountOff: decimal.RequireFromString("10.00"),
		Currency:  "usd",
	}, base.Add(time.Minute))

	inv := s.newInvoice("100.00")
	_, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)

	// 20% of 100, then 10 off the remaining 80
	s.True(decimal.RequireFromString("30").Equal(inv.CouponsAmount), "got %s", inv.CouponsAmount)
}

func (s *InvoiceCalculationSuite) TestFixedCouponNeverOvershoots() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.applyCoupon(&coupon.Coupon{
		Name:      "huge",
		Type:      types.CouponTypeFixedAmount,
		AmountOff: decimal.RequireFromString("500.00"),
		Currency:  "usd",
	}, base)

	inv := s.newInvoice("40.00")
	_, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)
	s.True(decimal.RequireFromString("40").Equal(inv.CouponsAmount))
}

// Randomized stacking: no matter how many coupons pile up, the combined
// discount never exceeds the subtotal.
func (s *InvoiceCalculationSuite) TestStackedDiscountBoundedBySubtotal() {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		if rng.Intn(2) == 0 {
			s.applyCoupon(&coupon.Coupon{
				Name:      fmt.Sprintf("fixed-%d", i),
				Type:      types.CouponTypeFixedAmount,
				AmountOff: decimal.NewFromInt(int64(rng.Intn(80) + 1)),
				Currency:  "usd",
			}, base.Add(time.Duration(i)*time.Minute))
		} else {
			s.applyCoupon(&coupon.Coupon{
				Name:          fmt.Sprintf("pct-%d", i),
				Type:          types.CouponTypePercentage,
				PercentageOff: decimal.NewFromInt(int64(rng.Intn(90) + 1)),
			}, base.Add(time.Duration(i)*time.Minute))
		}
	}

	inv := s.newInvoice("137.50")
	_, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)

	s.True(inv.CouponsAmount.GreaterThanOrEqual(decimal.Zero))
	s.True(inv.CouponsAmount.LessThanOrEqual(inv.Subtotal),
		"discount %s exceeds subtotal %s", inv.CouponsAmount, inv.Subtotal)
}

func (s *InvoiceCalculationSuite) TestCurrencyMismatchedFixedCouponSkipped() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.applyCoupon(&coupon.Coupon{
		Name:      "eur only",
		Type:      types.CouponTypeFixedAmount,
		AmountOff: decimal.RequireFromString("10.00"),
		Currency:  "eur",
	}, base)

	inv := s.newInvoice("100.00")
	applied, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)
	s.Empty(applied)
	s.True(inv.CouponsAmount.IsZero())
}

func (s *InvoiceCalculationSuite) TestConsumeLifecycles() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	once := s.applyCoupon(&coupon.Coupon{
		Name:      "once",
		Type:      types.CouponTypeFixedAmount,
		AmountOff: decimal.NewFromInt(5),
		Currency:  "usd",
		Frequency: types.CouponFrequencyOnce,
	}, base)
	recurring := s.applyCoupon(&coupon.Coupon{
		Name:              "recurring",
		Type:              types.CouponTypeFixedAmount,
		AmountOff:         decimal.NewFromInt(5),
		Currency:          "usd",
		Frequency:         types.CouponFrequencyRecurring,
		FrequencyDuration: 2,
	}, base.Add(time.Minute))
	forever := s.applyCoupon(&coupon.Coupon{
		Name:          "forever",
		Type:          types.CouponTypePercentage,
		PercentageOff: decimal.NewFromInt(10),
		Frequency:     types.CouponFrequencyForever,
	}, base.Add(2*time.Minute))

	err := s.service.ConsumeAppliedCoupons(s.GetContext(), []*coupon.AppliedCoupon{once, recurring, forever})
	s.NoError(err)

	s.Equal(types.AppliedCouponStatusTerminated, once.AppliedStatus)
	s.Equal(types.AppliedCouponStatusActive, recurring.AppliedStatus)
	s.Equal(1, recurring.RemainingDuration)
	s.Equal(types.AppliedCouponStatusActive, forever.AppliedStatus)

	// the second consumption exhausts the recurring coupon
	err = s.service.ConsumeAppliedCoupons(s.GetContext(), []*coupon.AppliedCoupon{recurring})
	s.NoError(err)
	s.Equal(types.AppliedCouponStatusTerminated, recurring.AppliedStatus)

	// terminated coupons no longer contribute
	inv := s.newInvoice("100.00")
	applied, err := s.service.ApplyCoupons(s.GetContext(), inv)
	s.NoError(err)
	s.Len(applied, 1)
	s.True(decimal.RequireFromString("10").Equal(inv.CouponsAmount))
}

func (s *InvoiceCalculationSuite) TestCalculateTaxes() {
	s.GetTaxProvider().SetRates("cust-1", []*tax.Rate{
		{ID: "vat", Name: "VAT", Percentage: decimal.NewFromInt(10)},
		{ID: "levy", Name: "Levy", Percentage: decimal.NewFromInt(5)},
	})

	inv := s.newInvoice("100.00")
	inv.CouponsAmount = decimal.RequireFromString("20.00")

	err := s.service.CalculateTaxes(s.GetContext(), inv, "plan-1")
	s.NoError(err)

	// rates apply independently to the discounted base of 80
	s.True(decimal.RequireFromString("12").Equal(inv.TaxAmount), "got %s", inv.TaxAmount)
}

func (s *InvoiceCalculationSuite) TestNoRatesMeansNoTax() {
	inv := s.newInvoice("100.00")
	err := s.service.CalculateTaxes(s.GetContext(), inv, "plan-1")
	s.NoError(err)
	s.True(inv.TaxAmount.IsZero())
}

func (s *InvoiceCalculationSuite) TestComputeTotalsClampsAtZero() {
	inv := s.newInvoice("50.00")
	inv.CouponsAmount = decimal.RequireFromString("30.00")
	inv.TaxAmount = decimal.RequireFromString("2.00")
	inv.PrepaidCreditAmount = decimal.RequireFromString("100.00")

	s.service.ComputeTotals(inv)
	s.True(inv.Total.IsZero())

	inv = s.newInvoice("100.00")
	inv.CouponsAmount = decimal.RequireFromString("28.00")
	inv.TaxAmount = decimal.RequireFromString("7.20")
	s.service.ComputeTotals(inv)
	s.True(decimal.RequireFromString("79.20").Equal(inv.Total), "got %s", inv.Total)
}
