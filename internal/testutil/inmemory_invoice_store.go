package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/invoice"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
)

// InMemoryInvoiceStore is an in-memory implementation of the invoice.Repository interface
type InMemoryInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*invoice.Invoice
}

// NewInMemoryInvoiceStore creates a new instance of InMemoryInvoiceStore
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithHint("Invoice already exists").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	s.invoices[inv.ID] = inv
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invoices[id]
	if !exists {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	inv.UpdatedAt = time.Now().UTC()
	s.invoices[inv.ID] = inv
	return nil
}

// ListProgressiveBySubscription returns the subscription's non voided
// progressive invoices whose period overlaps the window, oldest first.
func (s *InMemoryInvoiceStore) ListProgressiveBySubscription(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if inv.SubscriptionID != subscriptionID {
			continue
		}
		if inv.InvoiceType != types.InvoiceTypeProgressiveBilling {
			continue
		}
		if inv.Voided {
			continue
		}
		if inv.PeriodEnd.Before(periodStart) || inv.PeriodStart.After(periodEnd) {
			continue
		}
		invoices = append(invoices, inv)
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.Before(invoices[j].CreatedAt)
	})

	return invoices, nil
}

// Clear clears all invoices from the in-memory store
func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices = make(map[string]*invoice.Invoice)
}
