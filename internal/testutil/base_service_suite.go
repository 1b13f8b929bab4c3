package testutil

import (
	"context"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/config"
	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/boxbilling/bxb-sub002/internal/domain/commitment"
	"github.com/boxbilling/bxb-sub002/internal/domain/coupon"
	"github.com/boxbilling/bxb-sub002/internal/domain/events"
	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	"github.com/boxbilling/bxb-sub002/internal/domain/wallet"
	"github.com/boxbilling/bxb-sub002/internal/logger"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/boxbilling/bxb-sub002/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	EventRepo   events.Repository
	MeterRepo   meter.Repository
	ChargeRepo  charge.Repository
	CommitRepo  commitment.Repository
	CouponRepo  coupon.Repository
	WalletRepo  wallet.Repository
	InvoiceRepo invoice.Repository
	SubRepo     subscription.Repository
	FeeRepo     fee.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	stores      Stores
	taxProvider *FakeTaxProvider
	logger      *logger.Logger
	config      *config.Configuration
	now         time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		EventRepo:   NewInMemoryEventStore(),
		MeterRepo:   NewInMemoryMeterStore(),
		ChargeRepo:  NewInMemoryChargeStore(),
		CommitRepo:  NewInMemoryCommitmentStore(),
		CouponRepo:  NewInMemoryCouponStore(),
		WalletRepo:  NewInMemoryWalletStore(),
		InvoiceRepo: NewInMemoryInvoiceStore(),
		SubRepo:     NewInMemorySubscriptionStore(),
		FeeRepo:     NewInMemoryFeeStore(),
	}
	s.taxProvider = NewFakeTaxProvider()
}

// ClearStores clears every in-memory store
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.EventRepo.(*InMemoryEventStore).Clear()
	s.stores.MeterRepo.(*InMemoryMeterStore).Clear()
	s.stores.ChargeRepo.(*InMemoryChargeStore).Clear()
	s.stores.CommitRepo.(*InMemoryCommitmentStore).Clear()
	s.stores.CouponRepo.(*InMemoryCouponStore).Clear()
	s.stores.WalletRepo.(*InMemoryWalletStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.SubRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.FeeRepo.(*InMemoryFeeStore).Clear()
	s.taxProvider.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetTaxProvider returns the fake tax provider
func (s *BaseServiceTestSuite) GetTaxProvider() *FakeTaxProvider {
	return s.taxProvider
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
