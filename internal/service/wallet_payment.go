package service

import (
	"context"
	"sort"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/wallet"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// ConsumeRequest asks for an amount to be settled from a customer's prepaid
// wallets
type ConsumeRequest struct {
	CustomerID string          `validate:"required"`
	Currency   string          `validate:"required"`
	Amount     decimal.Decimal `validate:"required"`

	// InvoiceID links the resulting ledger entries to the invoice being paid
	InvoiceID string
}

// ConsumeResult reports how much of the requested amount the wallets covered
type ConsumeResult struct {
	// TotalConsumed is the currency value drained across all wallets
	TotalConsumed decimal.Decimal

	// RemainingAmount is what the wallets could not cover
	RemainingAmount decimal.Decimal

	// Transactions are the ledger entries written, one per wallet touched
	Transactions []*wallet.Transaction
}

// WalletPaymentService settles amounts against prepaid wallets in priority
// order. Partial coverage is success: the caller collects the remainder by
// other means.
type WalletPaymentService interface {
	ConsumeForPayment(ctx context.Context, req *ConsumeRequest) (*ConsumeResult, error)
}

type walletPaymentService struct {
	ServiceParams
}

func NewWalletPaymentService(params ServiceParams) WalletPaymentService {
	return &walletPaymentService{ServiceParams: params}
}

func (s *walletPaymentService) ConsumeForPayment(ctx context.Context, req *ConsumeRequest) (*ConsumeResult, error) {
	if req.CustomerID == "" {
		return nil, ierr.NewError("customer_id is required").
			WithHint("Consumption must name a customer").
			Mark(ierr.ErrValidation)
	}
	if req.Amount.IsNegative() {
		return nil, ierr.NewError("amount must not be negative").
			WithHint("Consumption amount must not be negative").
			WithReportableDetails(map[string]any{
				"amount": req.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	// nothing to settle, no ledger rows
	if req.Amount.IsZero() {
		return &ConsumeResult{
			TotalConsumed:   decimal.Zero,
			RemainingAmount: decimal.Zero,
		}, nil
	}

	wallets, err := s.WalletRepo.GetWalletsByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	eligible := make([]*wallet.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if !w.CanBeConsumed(now) {
			continue
		}
		if !types.IsMatchingCurrency(w.Currency, req.Currency) {
			continue
		}
		eligible = append(eligible, w)
	}

	// lower priority drains first, creation time breaks ties
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority < eligible[j].Priority
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	result := &ConsumeResult{
		TotalConsumed:   decimal.Zero,
		RemainingAmount: req.Amount,
	}

	for _, w := range eligible {
		if result.RemainingAmount.LessThanOrEqual(decimal.Zero) {
			break
		}

		consume := decimal.Min(w.Balance, result.RemainingAmount)
		creditsConsumed := w.CreditsForAmount(consume)

		newBalance := w.Balance.Sub(consume)
		newCreditBalance := w.CreditBalance.Sub(creditsConsumed)

		if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, newBalance, newCreditBalance); err != nil {
			return nil, err
		}

		tx := &wallet.Transaction{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
			WalletID:            w.ID,
			Type:                types.TransactionTypeOutbound,
			Amount:              consume,
			CreditAmount:        creditsConsumed,
			CreditBalanceBefore: w.CreditBalance,
			CreditBalanceAfter:  newCreditBalance,
			Description:         "Invoice payment",
			BaseModel:           types.GetDefaultBaseModel(ctx),
		}
		if req.InvoiceID != "" {
			invoiceID := req.InvoiceID
			tx.InvoiceID = &invoiceID
		}
		if err := s.WalletRepo.CreateTransaction(ctx, tx); err != nil {
			return nil, err
		}

		w.Balance = newBalance
		w.CreditBalance = newCreditBalance

		result.TotalConsumed = result.TotalConsumed.Add(consume)
		result.RemainingAmount = result.RemainingAmount.Sub(consume)
		result.Transactions = append(result.Transactions, tx)
	}

	s.Logger.Infow("consumed wallet credits",
		"customer_id", req.CustomerID,
		"requested", req.Amount,
		"consumed", result.TotalConsumed,
		"remaining", result.RemainingAmount,
		"wallets_touched", len(result.Transactions),
	)

	return result, nil
}
