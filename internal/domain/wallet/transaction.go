package wallet

import (
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is one append only wallet ledger row. Consumption creates one
// OUTBOUND row per wallet actually touched.
type Transaction struct {
	ID       string `db:"id" json:"id"`
	WalletID string `db:"wallet_id" json:"wallet_id"`

	Type types.TransactionType `db:"type" json:"type"`

	// Amount is the currency value moved
	Amount decimal.Decimal `db:"amount" json:"amount"`

	// CreditAmount is the same movement expressed in stored credits
	CreditAmount decimal.Decimal `db:"credit_amount" json:"credit_amount"`

	CreditBalanceBefore decimal.Decimal `db:"credit_balance_before" json:"credit_balance_before"`
	CreditBalanceAfter  decimal.Decimal `db:"credit_balance_after" json:"credit_balance_after"`

	// InvoiceID links the movement to the invoice it covered, when any
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`

	Description string `db:"description" json:"description"`

	types.BaseModel
}

// ApplyConversionRate recomputes the currency amount from the credit amount,
// so for a conversion rate of 2, 1 credit = 2 dollars (assuming USD).
func (t Transaction) ApplyConversionRate(rate decimal.Decimal) Transaction {
	t.Amount = t.CreditAmount.Mul(rate)
	return t
}
