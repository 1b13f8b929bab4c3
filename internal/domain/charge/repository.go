package charge

import "context"

// Repository defines the read contract for charges
type Repository interface {
	CreateCharge(ctx context.Context, c *Charge) error
	GetCharge(ctx context.Context, id string) (*Charge, error)
	GetChargesByPlanID(ctx context.Context, planID string) ([]*Charge, error)
}
