package service

import (
	"github.com/boxbilling/bxb-sub002/internal/config"
	"github.com/boxbilling/bxb-sub002/internal/domain/charge"
	"github.com/boxbilling/bxb-sub002/internal/domain/commitment"
	"github.com/boxbilling/bxb-sub002/internal/domain/coupon"
	"github.com/boxbilling/bxb-sub002/internal/domain/events"
	"github.com/boxbilling/bxb-sub002/internal/domain/fee"
	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	"github.com/boxbilling/bxb-sub002/internal/domain/subscription"
	"github.com/boxbilling/bxb-sub002/internal/domain/tax"
	"github.com/boxbilling/bxb-sub002/internal/domain/wallet"
	"github.com/boxbilling/bxb-sub002/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	EventRepo   events.Repository
	MeterRepo   meter.Repository
	ChargeRepo  charge.Repository
	CommitRepo  commitment.Repository
	CouponRepo  coupon.Repository
	WalletRepo  wallet.Repository
	InvoiceRepo invoice.Repository
	SubRepo     subscription.Repository
	FeeRepo     fee.Repository

	// TaxProvider resolves applicable tax rates; billing only applies them
	TaxProvider tax.Provider
}
