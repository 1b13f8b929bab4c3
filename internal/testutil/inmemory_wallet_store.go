package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/wallet"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryWalletStore is an in-memory implementation of the wallet.Repository interface
type InMemoryWalletStore struct {
	mu           sync.Mutex
	wallets      map[string]*wallet.Wallet
	transactions map[string]*wallet.Transaction
}

// NewInMemoryWalletStore creates a new instance of InMemoryWalletStore
func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:      make(map[string]*wallet.Wallet),
		transactions: make(map[string]*wallet.Transaction),
	}
}

func (s *InMemoryWalletStore) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[w.ID] = w
	return nil
}

func (s *InMemoryWalletStore) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.wallets[id]
	if !exists {
		return nil, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return w, nil
}

func (s *InMemoryWalletStore) GetWalletsByCustomerID(ctx context.Context, customerID string) ([]*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets := make([]*wallet.Wallet, 0)
	for _, w := range s.wallets {
		if w.CustomerID == customerID {
			wallets = append(wallets, w)
		}
	}

	sort.SliceStable(wallets, func(i, j int) bool {
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})

	return wallets, nil
}

func (s *InMemoryWalletStore) UpdateWalletBalance(ctx context.Context, walletID string, balance, creditBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": walletID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if balance.IsNegative() || creditBalance.IsNegative() {
		return ierr.NewError("wallet balance cannot go negative").
			WithHint("Wallet balance cannot go negative").
			WithReportableDetails(map[string]interface{}{
				"wallet_id":      walletID,
				"balance":        balance,
				"credit_balance": creditBalance,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	w.Balance = balance
	w.CreditBalance = creditBalance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryWalletStore) UpdateWalletStatus(ctx context.Context, walletID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": walletID,
			}).
			Mark(ierr.ErrNotFound)
	}

	w.WalletStatus = types.WalletStatus(status)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryWalletStore) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[tx.ID] = tx
	return nil
}

func (s *InMemoryWalletStore) GetTransactionsByWalletID(ctx context.Context, walletID string) ([]*wallet.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions := make([]*wallet.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.WalletID == walletID {
			transactions = append(transactions, tx)
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
	})

	return transactions, nil
}

// Clear clears all wallets and transactions from the in-memory store
func (s *InMemoryWalletStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets = make(map[string]*wallet.Wallet)
	s.transactions = make(map[string]*wallet.Transaction)
}
