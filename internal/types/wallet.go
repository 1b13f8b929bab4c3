package types

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/samber/lo"
)

// WalletStatus represents the current state of a wallet
type WalletStatus string

const (
	WalletStatusActive     WalletStatus = "active"
	WalletStatusTerminated WalletStatus = "terminated"
)

// TransactionType is the direction of a wallet ledger entry
type TransactionType string

const (
	TransactionTypeInbound  TransactionType = "INBOUND"
	TransactionTypeOutbound TransactionType = "OUTBOUND"
)

func (t TransactionType) Validate() error {
	allowedValues := []string{
		string(TransactionTypeInbound),
		string(TransactionTypeOutbound),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid transaction type").
			WithHint("Invalid wallet transaction type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
