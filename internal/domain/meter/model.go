package meter

import (
	"time"

	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
)

// Meter is a billable metric: a named aggregation over usage events.
type Meter struct {
	// ID is the unique identifier for the meter
	ID string `db:"id" json:"id"`

	// EventName is the unique code events reference to count towards this meter.
	// It is the primary matching field against the events table.
	EventName string `db:"event_name" json:"event_name"`

	// Name is the display name of the meter
	Name string `db:"name" json:"name"`

	// Aggregation defines the aggregation type and field for the meter
	Aggregation Aggregation `db:"aggregation" json:"aggregation"`

	// Filters define the allowed key/value domains charge filters may
	// constrain on. A charge filter value referencing a key absent here
	// is an orphan and is pruned before matching.
	Filters []Filter `db:"filters" json:"filters"`

	types.BaseModel
}

type Filter struct {
	// Key is the key for the filter from $event.properties
	// Only first level keys in the properties are supported, not nested keys
	Key string `json:"key"`

	// Values are the possible values for the filter to be considered for the meter
	Values []string `json:"values"`
}

type Aggregation struct {
	// Type is the type of aggregation to be applied on the events
	Type types.AggregationType `json:"type"`

	// Field is the key in $event.properties on which the aggregation is applied.
	// Required for every aggregation type except COUNT.
	Field string `json:"field,omitempty"`
}

// GetFilter returns the metric filter for a key, or false when the key is
// not part of the metric's filter domain.
func (m *Meter) GetFilter(key string) (*Filter, bool) {
	for i := range m.Filters {
		if m.Filters[i].Key == key {
			return &m.Filters[i], true
		}
	}
	return nil, false
}

// Validate validates the meter configuration
func (m *Meter) Validate() error {
	if m.ID == "" {
		return ierr.NewError("id is required").
			WithHint("Meter ID is required").
			Mark(ierr.ErrValidation)
	}
	if m.EventName == "" {
		return ierr.NewError("event_name is required").
			WithHint("Meter event name is required").
			Mark(ierr.ErrValidation)
	}
	if !m.Aggregation.Type.Validate() {
		return ierr.NewError("invalid aggregation type").
			WithHint("Invalid aggregation type").
			WithReportableDetails(map[string]any{
				"type": m.Aggregation.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	if m.Aggregation.Type.RequiresField() && m.Aggregation.Field == "" {
		return ierr.NewError("field is required for aggregation type").
			WithHintf("Aggregation type %s requires a field", m.Aggregation.Type).
			Mark(ierr.ErrValidation)
	}

	for _, filter := range m.Filters {
		if filter.Key == "" {
			return ierr.NewError("filter key cannot be empty").
				WithHint("Meter filter key cannot be empty").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// NewMeter creates a new meter with defaults
func NewMeter(name string, tenantID, createdBy string) *Meter {
	now := time.Now().UTC()
	return &Meter{
		ID:   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		Name: name,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
		Filters: []Filter{},
	}
}
