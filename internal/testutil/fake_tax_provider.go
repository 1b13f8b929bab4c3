package testutil

import (
	"context"
	"sync"

	"github.com/boxbilling/bxb-sub002/internal/domain/tax"
)

// FakeTaxProvider is a configurable tax.Provider for tests. Rates can be
// registered per customer; unknown customers get no tax.
type FakeTaxProvider struct {
	mu    sync.Mutex
	rates map[string][]*tax.Rate
	err   error
}

// NewFakeTaxProvider creates a new instance of FakeTaxProvider
func NewFakeTaxProvider() *FakeTaxProvider {
	return &FakeTaxProvider{
		rates: make(map[string][]*tax.Rate),
	}
}

// SetRates registers the rates returned for a customer
func (p *FakeTaxProvider) SetRates(customerID string, rates []*tax.Rate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rates[customerID] = rates
}

// SetError makes every lookup fail with the given error
func (p *FakeTaxProvider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *FakeTaxProvider) ApplicableRates(ctx context.Context, customerID, planID string) ([]*tax.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return p.rates[customerID], nil
}

// Clear clears all registered rates
func (p *FakeTaxProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rates = make(map[string][]*tax.Rate)
	p.err = nil
}
