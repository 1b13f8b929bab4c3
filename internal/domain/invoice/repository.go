package invoice

import (
	"context"
	"time"
)

// Repository defines the persistence contract for invoices. Listing methods
// return non voided invoices only so voids are retroactive by construction.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error

	// ListProgressiveBySubscription returns the non voided progressive
	// invoices of a subscription whose period overlaps the given window
	ListProgressiveBySubscription(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) ([]*Invoice, error)
}
