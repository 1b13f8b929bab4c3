package events

import (
	"context"
	"time"
)

// GetEventsParams narrows the events returned by the repository.
// The time window is half open: StartTime <= timestamp < EndTime.
type GetEventsParams struct {
	ExternalCustomerID string
	EventName          string
	StartTime          time.Time
	EndTime            time.Time
}

// Repository is the read/write contract the engine needs for events.
// The backing store owns ordering and durability; the engine only ever
// appends and reads back windows.
type Repository interface {
	InsertEvent(ctx context.Context, event *Event) error
	GetEvents(ctx context.Context, params *GetEventsParams) ([]*Event, error)
}
