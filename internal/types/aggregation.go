package types

// AggregationType is the kind of aggregation a billable metric applies to
// its matching events to produce a single usage value
type AggregationType string

const (
	AggregationCount       AggregationType = "COUNT"
	AggregationSum         AggregationType = "SUM"
	AggregationMax         AggregationType = "MAX"
	AggregationUniqueCount AggregationType = "UNIQUE_COUNT"
)

// Validate returns true for a known aggregation type
func (t AggregationType) Validate() bool {
	switch t {
	case AggregationCount, AggregationSum, AggregationMax, AggregationUniqueCount:
		return true
	}
	return false
}

// RequiresField returns true when the aggregation reads a property field
// from the event. COUNT is the only aggregation that does not.
func (t AggregationType) RequiresField() bool {
	return t != AggregationCount
}
