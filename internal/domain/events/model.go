package events

import (
	"strconv"
	"time"

	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Event represents a single raw usage event. Events are append only and are
// never mutated after ingestion.
type Event struct {
	// Unique identifier for the event
	ID string `json:"id" validate:"required"`

	// ExternalCustomerID is the identifier of the customer in the caller's system
	ExternalCustomerID string `json:"external_customer_id" validate:"required"`

	// EventName identifies the billable metric this event counts towards
	EventName string `json:"event_name" validate:"required"`

	// Additional properties used for filtering and aggregation
	Properties map[string]interface{} `json:"properties"`

	// Source of the event
	Source string `json:"source"`

	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new event with defaults
func NewEvent(
	eventName, externalCustomerID string,
	properties map[string]interface{},
	timestamp time.Time,
	eventID, source string,
) *Event {
	if eventID == "" {
		eventID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT)
	}

	now := time.Now().UTC()

	if timestamp.IsZero() {
		timestamp = now
	} else {
		timestamp = timestamp.UTC()
	}

	return &Event{
		ID:                 eventID,
		ExternalCustomerID: externalCustomerID,
		Source:             source,
		EventName:          eventName,
		Timestamp:          timestamp,
		Properties:         properties,
	}
}

// Validate validates the event
func (e *Event) Validate() error {
	if e.ExternalCustomerID == "" {
		return ierr.NewError("external_customer_id is required").
			WithHint("External customer ID is required").
			Mark(ierr.ErrValidation)
	}
	if e.EventName == "" {
		return ierr.NewError("event_name is required").
			WithHint("Event name is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetPropertyString returns the string form of a property value.
// The second return is false when the key is absent or the value is nil.
func (e *Event) GetPropertyString(key string) (string, bool) {
	val, ok := e.Properties[key]
	if !ok || val == nil {
		return "", false
	}

	switch v := val.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case decimal.Decimal:
		return v.String(), true
	default:
		return "", false
	}
}

// GetPropertyDecimal returns the numeric value of a property.
// Numbers and numeric strings both parse; anything else reads as absent.
func (e *Event) GetPropertyDecimal(key string) (decimal.Decimal, bool) {
	val, ok := e.Properties[key]
	if !ok || val == nil {
		return decimal.Zero, false
	}

	switch v := val.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// MatchesProperties reports whether every supplied key is present in the
// event's properties with an exact string equal value. A missing key means
// the event is excluded; there are no wildcards or partial matches.
func (e *Event) MatchesProperties(filters map[string]string) bool {
	for key, want := range filters {
		got, ok := e.GetPropertyString(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}
