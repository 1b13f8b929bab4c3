package service

import (
	"testing"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/boxbilling/bxb-sub002/internal/domain/events"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/testutil"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProgressiveBillingSuite struct {
	testutil.BaseServiceTestSuite
	service  ProgressiveBillingService
	testData struct {
		subscription *subscription.Subscription
		periodStart  time.Time
		periodEnd    time.Time
	}
}

func TestProgressiveBillingService(t *testing.T) {
	suite.Run(t, new(ProgressiveBillingSuite))
}

func (s *ProgressiveBillingSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewProgressiveBillingService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		EventRepo:   s.GetStores().EventRepo,
		MeterRepo:   s.GetStores().MeterRepo,
		ChargeRepo:  s.GetStores().ChargeRepo,
		CommitRepo:  s.GetStores().CommitRepo,
		CouponRepo:  s.GetStores().CouponRepo,
		WalletRepo:  s.GetStores().WalletRepo,
		InvoiceRepo: s.GetStores().InvoiceRepo,
		SubRepo:     s.GetStores().SubRepo,
		FeeRepo:     s.GetStores().FeeRepo,
		TaxProvider: s.GetTaxProvider(),
	})
	s.setupTestData()
}

func (s *ProgressiveBillingSuite) setupTestData() {
	s.testData.periodStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.testData.periodEnd = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	s.testData.subscription = &subscription.Subscription{
		ID:                 "sub-1",
		CustomerID:         "cust-1",
		PlanID:             "plan-1",
		ExternalCustomerID: "ext-cust-1",
		Currency:           "usd",
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: s.testData.periodStart,
		CurrentPeriodEnd:   s.testData.periodEnd,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), s.testData.subscription))

	m := &meter.Meter{
		ID:        "meter-api",
		EventName: "api_call",
		Name:      "API Calls",
		Aggregation: meter.Aggregation{
			Type: types.AggregationCount,
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().MeterRepo.CreateMeter(s.GetContext(), m))

	c := &charge.Charge{
		ID:          "charge-api",
		PlanID:      "plan-1",
		MeterID:     m.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("1.00"),
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ChargeRepo.CreateCharge(s.GetContext(), c))
}

func (s *ProgressiveBillingSuite) insertAPICalls(n int, from time.Time) {
	for i := 0; i < n; i++ {
		ts := from.Add(time.Duration(i) * time.Minute)
		ev := events.NewEvent("api_call", "ext-cust-1", nil, ts, "", "test")
		s.NoError(s.GetStores().EventRepo.InsertEvent(s.GetContext(), ev))
	}
}

func (s *ProgressiveBillingSuite) TestGenerateThenCredit() {
	s.insertAPICalls(30, s.testData.periodStart)

	first, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 10))
	s.NoError(err)
	s.Equal(types.InvoiceTypeProgressiveBilling, first.InvoiceType)
	s.True(decimal.RequireFromString("30").Equal(first.Total), "got %s", first.Total)
	s.True(first.ProgressiveCreditAmount.IsZero())
	s.NotEmpty(first.InvoiceNumber)

	// more usage later in the period: the next invoice bills cumulative
	// usage minus what the first invoice collected
	s.insertAPICalls(20, s.testData.periodStart.AddDate(0, 0, 12))

	second, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 20))
	s.NoError(err)
	s.True(decimal.RequireFromString("50").Equal(second.Subtotal), "got %s", second.Subtotal)
	s.True(decimal.RequireFromString("30").Equal(second.ProgressiveCreditAmount))
	s.True(decimal.RequireFromString("20").Equal(second.Total), "got %s", second.Total)

	// earlier invoices were never touched
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), first.ID)
	s.NoError(err)
	s.True(decimal.RequireFromString("30").Equal(stored.Total))
}

func (s *ProgressiveBillingSuite) TestNothingNewToBill() {
	s.insertAPICalls(10, s.testData.periodStart)

	_, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 10))
	s.NoError(err)

	// no new usage since the first invoice
	_, err = s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 11))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ProgressiveBillingSuite) TestVoidIsRetroactive() {
	s.insertAPICalls(30, s.testData.periodStart)

	first, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 10))
	s.NoError(err)

	credit, err := s.service.CalculateProgressiveBillingCredit(s.GetContext(), s.testData.subscription)
	s.NoError(err)
	s.True(decimal.RequireFromString("30").Equal(credit))

	s.NoError(s.service.VoidInvoice(s.GetContext(), first.ID))

	// the voided invoice no longer counts, so its amount is billable again
	credit, err = s.service.CalculateProgressiveBillingCredit(s.GetContext(), s.testData.subscription)
	s.NoError(err)
	s.True(credit.IsZero())

	second, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 11))
	s.NoError(err)
	s.True(decimal.RequireFromString("30").Equal(second.Total), "got %s", second.Total)
}

func (s *ProgressiveBillingSuite) TestVoidTwiceRejected() {
	s.insertAPICalls(5, s.testData.periodStart)

	inv, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 5))
	s.NoError(err)

	s.NoError(s.service.VoidInvoice(s.GetContext(), inv.ID))

	err = s.service.VoidInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ProgressiveBillingSuite) TestAsOfOutsidePeriodRejected() {
	_, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodEnd.AddDate(0, 0, 1))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ProgressiveBillingSuite) TestUnknownSubscription() {
	_, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "no-such-sub", s.testData.periodStart.AddDate(0, 0, 1))
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProgressiveBillingSuite) TestFeesPersistedWithInvoice() {
	s.insertAPICalls(10, s.testData.periodStart)

	inv, err := s.service.GenerateProgressiveInvoice(s.GetContext(), "sub-1", s.testData.periodStart.AddDate(0, 0, 10))
	s.NoError(err)

	fees, err := s.GetStores().FeeRepo.GetFeesByInvoiceID(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Len(fees, 1)
	s.True(decimal.RequireFromString("10").Equal(fees[0].Amount))
}
