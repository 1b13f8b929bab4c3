package fee

import "context"

// Repository defines the write contract for computed fees
type Repository interface {
	CreateFee(ctx context.Context, f *Fee) error
	CreateFees(ctx context.Context, fees []*Fee) error
	GetFeesByInvoiceID(ctx context.Context, invoiceID string) ([]*Fee, error)
}
