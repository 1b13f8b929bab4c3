package meter

import "context"

// Repository defines the read contract for meters
type Repository interface {
	CreateMeter(ctx context.Context, meter *Meter) error
	GetMeter(ctx context.Context, id string) (*Meter, error)
	GetMeterByEventName(ctx context.Context, eventName string) (*Meter, error)
	ListMeters(ctx context.Context) ([]*Meter, error)
}
