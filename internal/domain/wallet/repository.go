package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the persistence contract for wallets and their ledger.
// The storage layer owns the atomic transaction boundary and must serialize
// concurrent balance updates for the same customer.
type Repository interface {
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWalletByID(ctx context.Context, id string) (*Wallet, error)
	GetWalletsByCustomerID(ctx context.Context, customerID string) ([]*Wallet, error)
	UpdateWalletBalance(ctx context.Context, walletID string, balance, creditBalance decimal.Decimal) error
	UpdateWalletStatus(ctx context.Context, walletID string, status string) error

	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionsByWalletID(ctx context.Context, walletID string) ([]*Transaction, error)
}
