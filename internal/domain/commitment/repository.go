package commitment

import "context"

// Repository defines the read contract for plan commitments
type Repository interface {
	CreateCommitment(ctx context.Context, c *Commitment) error
	GetCommitmentsByPlanID(ctx context.Context, planID string) ([]*Commitment, error)
}
