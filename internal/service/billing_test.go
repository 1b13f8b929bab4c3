package service

import (
	"testing"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/boxbilling/bxb-sub002/internal/domain/commitment"
	"github.com/boxbilling/bxb-sub002/internal/domain/events"
	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/testutil"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  BillingService
	testData struct {
		subscription *subscription.Subscription
		apiMeter     *meter.Meter
		periodStart  time.Time
		periodEnd    time.Time
	}
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(ServiceParams{
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

func (s *BillingServiceSuite) setupTestData() {
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

	s.testData.apiMeter = &meter.Meter{
		ID:        "meter-api",
		EventName: "api_call",
		Name:      "API Calls",
		Aggregation: meter.Aggregation{
			Type: types.AggregationCount,
		},
		Filters: []meter.Filter{
			{Key: "region", Values: []string{"us-east-1", "eu-west-1"}},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().MeterRepo.CreateMeter(s.GetContext(), s.testData.apiMeter))
}

func (s *BillingServiceSuite) insertAPICalls(n int, region string) {
	for i := 0; i < n; i++ {
		ts := s.testData.periodStart.Add(time.Duration(i) * time.Minute)
		props := map[string]interface{}{}
		if region != "" {
			props["region"] = region
		}
		ev := events.NewEvent("api_call", "ext-cust-1", props, ts, "", "test")
		s.NoError(s.GetStores().EventRepo.InsertEvent(s.GetContext(), ev))
	}
}

func (s *BillingServiceSuite) createCharge(c *charge.Charge) *charge.Charge {
	if c.ID == "" {
		c.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CHARGE)
	}
	c.PlanID = "plan-1"
	c.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	s.NoError(s.GetStores().ChargeRepo.CreateCharge(s.GetContext(), c))
	return c
}

func (s *BillingServiceSuite) calculate() *FeeCalculationResult {
	result, err := s.service.CalculateFees(s.GetContext(), s.testData.subscription, s.testData.periodStart, s.testData.periodEnd)
	s.NoError(err)
	s.NotNil(result)
	return result
}

func (s *BillingServiceSuite) TestStandardChargeFee() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
		InvoiceDisplayName: "API calls",
	})
	s.insertAPICalls(100, "us-east-1")

	result := s.calculate()
	s.Len(result.Fees, 1)

	f := result.Fees[0]
	s.Equal(types.FeeTypeCharge, f.FeeType)
	s.True(decimal.RequireFromString("10").Equal(f.Amount), "got %s", f.Amount)
	s.True(decimal.NewFromInt(100).Equal(f.Units))
	s.Equal(100, f.EventsCount)
	s.Equal("api_call", f.MetricCode)
	s.Equal("API calls", f.Description)
	s.True(result.Subtotal.Equal(f.Amount))
	s.Equal("usd", result.Currency)
}

func (s *BillingServiceSuite) TestChargeFiltersSplitUsage() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
		Filters: []charge.Filter{
			{
				ID:     "filter-us",
				Values: []charge.FilterValue{{Key: "region", Value: "us-east-1"}},
				Properties: &charge.Properties{
					Amount: decimal.RequireFromString("0.05"),
				},
				InvoiceDisplayName: "API calls (US)",
			},
			{
				ID:     "filter-eu",
				Values: []charge.FilterValue{{Key: "region", Value: "eu-west-1"}},
			},
		},
		InvoiceDisplayName: "API calls",
	})
	s.insertAPICalls(100, "us-east-1")
	s.insertAPICalls(40, "eu-west-1")

	result := s.calculate()
	s.Len(result.Fees, 2)

	byFilter := make(map[string]*fee.Fee)
	for _, f := range result.Fees {
		byFilter[f.FilterID] = f
	}

	us := byFilter["filter-us"]
	s.NotNil(us)
	s.True(decimal.RequireFromString("5").Equal(us.Amount), "got %s", us.Amount)
	s.Equal("API calls (US)", us.Description)

	eu := byFilter["filter-eu"]
	s.NotNil(eu)
	s.True(decimal.RequireFromString("4").Equal(eu.Amount), "got %s", eu.Amount)
	s.Equal("API calls", eu.Description)
}

func (s *BillingServiceSuite) TestOrphanedFilterValuesArePruned() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
		Filters: []charge.Filter{
			{
				ID: "filter-mixed",
				Values: []charge.FilterValue{
					{Key: "region", Value: "us-east-1"},
					// not in the meter's filter domain, pruned
					{Key: "color", Value: "blue"},
				},
			},
			{
				ID: "filter-all-orphans",
				Values: []charge.FilterValue{
					{Key: "color", Value: "red"},
				},
			},
		},
	})
	s.insertAPICalls(10, "us-east-1")

	result := s.calculate()
	// the fully orphaned segment contributes nothing
	s.Len(result.Fees, 1)
	s.Equal("filter-mixed", result.Fees[0].FilterID)
	s.True(decimal.RequireFromString("1").Equal(result.Fees[0].Amount))
}

func (s *BillingServiceSuite) TestEmptyFilterMatchesNothing() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
		Filters: []charge.Filter{
			{ID: "filter-empty", Values: []charge.FilterValue{}},
		},
	})
	s.insertAPICalls(10, "us-east-1")

	result := s.calculate()
	s.Empty(result.Fees)
}

func (s *BillingServiceSuite) TestFlatSubscriptionFee() {
	s.createCharge(&charge.Charge{
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("50.00"),
		},
		InvoiceDisplayName: "Base plan",
	})

	result := s.calculate()
	s.Len(result.Fees, 1)
	s.Equal(types.FeeTypeSubscription, result.Fees[0].FeeType)
	s.True(decimal.RequireFromString("50").Equal(result.Fees[0].Amount))
	s.True(decimal.NewFromInt(1).Equal(result.Fees[0].Units))
}

func (s *BillingServiceSuite) TestCommitmentTrueUp() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
	})
	s.insertAPICalls(400, "us-east-1") // 40.00 in usage fees

	cm := &commitment.Commitment{
		ID:             "comm-1",
		PlanID:         "plan-1",
		CommitmentType: types.CommitmentTypeMinimum,
		Amount:         decimal.RequireFromString("100.00"),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CommitRepo.CreateCommitment(s.GetContext(), cm))

	result := s.calculate()
	s.Len(result.Fees, 2)

	var trueUp *fee.Fee
	for _, f := range result.Fees {
		if f.FeeType == types.FeeTypeCommitment {
			trueUp = f
		}
	}
	s.NotNil(trueUp)
	s.True(decimal.RequireFromString("60").Equal(trueUp.Amount), "got %s", trueUp.Amount)
	s.Equal(types.DefaultCommitmentDescription, trueUp.Description)
	s.True(decimal.RequireFromString("100").Equal(result.Subtotal))
}

func (s *BillingServiceSuite) TestCommitmentMetIsNoTrueUp() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
	})
	s.insertAPICalls(1500, "us-east-1") // 150.00 exceeds the minimum

	cm := &commitment.Commitment{
		ID:             "comm-1",
		PlanID:         "plan-1",
		CommitmentType: types.CommitmentTypeMinimum,
		Amount:         decimal.RequireFromString("100.00"),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CommitRepo.CreateCommitment(s.GetContext(), cm))

	result := s.calculate()
	s.Len(result.Fees, 1)
	s.Equal(types.FeeTypeCharge, result.Fees[0].FeeType)
}

func (s *BillingServiceSuite) TestUnknownChargeModelIsSkipped() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModel("BOGUS"),
	})
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
	})
	s.insertAPICalls(10, "us-east-1")

	result := s.calculate()
	s.Len(result.Fees, 1)
	s.True(decimal.RequireFromString("1").Equal(result.Fees[0].Amount))
}

func (s *BillingServiceSuite) TestMissingMeterIsSkipped() {
	s.createCharge(&charge.Charge{
		MeterID:     "no-such-meter",
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
	})

	result := s.calculate()
	s.Empty(result.Fees)
	s.True(result.Subtotal.IsZero())
}

func (s *BillingServiceSuite) TestZeroUsageProducesNoFee() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelStandard,
		Properties: charge.Properties{
			Amount: decimal.RequireFromString("0.10"),
		},
	})

	result := s.calculate()
	s.Empty(result.Fees)
}

func (s *BillingServiceSuite) TestDynamicChargeSumsEventPrices() {
	s.createCharge(&charge.Charge{
		MeterID:     s.testData.apiMeter.ID,
		ChargeModel: types.ChargeModelDynamic,
		Properties: charge.Properties{
			PricePropertyKey: "unit_amount",
		},
	})

	prices := []float64{1.25, 2.50, 0.25}
	for i, p := range prices {
		ts := s.testData.periodStart.Add(time.Duration(i) * time.Minute)
		ev := events.NewEvent("api_call", "ext-cust-1", map[string]interface{}{
			"unit_amount": p,
		}, ts, "", "test")
		s.NoError(s.GetStores().EventRepo.InsertEvent(s.GetContext(), ev))
	}

	result := s.calculate()
	s.Len(result.Fees, 1)

	f := result.Fees[0]
	s.True(decimal.RequireFromString("4").Equal(f.Amount), "got %s", f.Amount)
	// units report the raw event count, not the summed prices
	s.True(decimal.NewFromInt(3).Equal(f.Units))
	s.Equal(3, f.EventsCount)
}

func (s *BillingServiceSuite) TestInactiveSubscriptionRejected() {
	s.testData.subscription.SubscriptionStatus = types.SubscriptionStatusCancelled

	_, err := s.service.CalculateFees(s.GetContext(), s.testData.subscription, s.testData.periodStart, s.testData.periodEnd)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
