package service

import (
	"context"
	"time"

	"github.com/boxbilling/bxb-sub002/internal/domain/events"
	"github.com/boxbilling/bxb-sub002/internal/domain/meter"
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// UsageParams selects the events to aggregate for one metric and window.
// Filters require exact string equality on first level event properties; an
// event missing a filtered key is excluded. The window is half open:
// StartTime <= timestamp < EndTime.
type UsageParams struct {
	ExternalCustomerID string
	EventName          string
	StartTime          time.Time
	EndTime            time.Time
	Filters            map[string]string

	// Aggregation overrides the metric's own aggregation when set. Billing
	// uses this for dynamic charges, which sum an event price property
	// independent of how the metric itself aggregates.
	Aggregation *meter.Aggregation
}

// UsageResult is the aggregated usage for one metric and window
type UsageResult struct {
	// Value is the aggregated usage quantity
	Value decimal.Decimal

	// EventsCount is the raw number of matching events, independent of the
	// aggregation type
	EventsCount int
}

// UsageService aggregates raw events into billable usage values
type UsageService interface {
	GetUsage(ctx context.Context, params *UsageParams) (*UsageResult, error)
}

type usageService struct {
	ServiceParams
}

func NewUsageService(params ServiceParams) UsageService {
	return &usageService{ServiceParams: params}
}

func (s *usageService) GetUsage(ctx context.Context, params *UsageParams) (*UsageResult, error) {
	if params.ExternalCustomerID == "" {
		return nil, ierr.NewError("external_customer_id is required").
			WithHint("Usage queries must name a customer").
			Mark(ierr.ErrValidation)
	}
	if params.EventName == "" {
		return nil, ierr.NewError("event_name is required").
			WithHint("Usage queries must name a metric event").
			Mark(ierr.ErrValidation)
	}
	if !params.EndTime.After(params.StartTime) {
		return nil, ierr.NewError("invalid usage window").
			WithHint("End time must be after start time").
			WithReportableDetails(map[string]any{
				"start_time": params.StartTime,
				"end_time":   params.EndTime,
			}).
			Mark(ierr.ErrValidation)
	}

	agg := params.Aggregation
	if agg == nil {
		m, err := s.MeterRepo.GetMeterByEventName(ctx, params.EventName)
		if err != nil {
			return nil, err
		}
		agg = &m.Aggregation
	}

	if !agg.Type.Validate() {
		return nil, ierr.NewError("invalid aggregation type").
			WithHint("Invalid aggregation type").
			WithReportableDetails(map[string]any{
				"type": agg.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	if agg.Type.RequiresField() && agg.Field == "" {
		return nil, ierr.NewError("field is required for aggregation type").
			WithHintf("Aggregation type %s requires a field", agg.Type).
			Mark(ierr.ErrValidation)
	}

	evs, err := s.EventRepo.GetEvents(ctx, &events.GetEventsParams{
		ExternalCustomerID: params.ExternalCustomerID,
		EventName:          params.EventName,
		StartTime:          params.StartTime,
		EndTime:            params.EndTime,
	})
	if err != nil {
		return nil, err
	}

	matched := make([]*events.Event, 0, len(evs))
	for _, ev := range evs {
		if ev.MatchesProperties(params.Filters) {
			matched = append(matched, ev)
		}
	}

	result := &UsageResult{
		Value:       s.aggregate(agg, matched),
		EventsCount: len(matched),
	}

	s.Logger.Debugw("aggregated usage",
		"event_name", params.EventName,
		"external_customer_id", params.ExternalCustomerID,
		"aggregation", agg.Type,
		"events_count", result.EventsCount,
		"value", result.Value,
	)

	return result, nil
}

// aggregate folds matched events into a single value. Events missing the
// aggregation field (or carrying a non numeric value where a number is
// needed) are skipped, not errors.
func (s *usageService) aggregate(agg *meter.Aggregation, matched []*events.Event) decimal.Decimal {
	switch agg.Type {
	case types.AggregationCount:
		return decimal.NewFromInt(int64(len(matched)))

	case types.AggregationSum:
		total := decimal.Zero
		for _, ev := range matched {
			if v, ok := ev.GetPropertyDecimal(agg.Field); ok {
				total = total.Add(v)
			}
		}
		return total

	case types.AggregationMax:
		max := decimal.Zero
		found := false
		for _, ev := range matched {
			v, ok := ev.GetPropertyDecimal(agg.Field)
			if !ok {
				continue
			}
			if !found || v.GreaterThan(max) {
				max = v
				found = true
			}
		}
		return max

	case types.AggregationUniqueCount:
		seen := make(map[string]struct{})
		for _, ev := range matched {
			if v, ok := ev.GetPropertyString(agg.Field); ok {
				seen[v] = struct{}{}
			}
		}
		return decimal.NewFromInt(int64(len(seen)))
	}

	return decimal.Zero
}
