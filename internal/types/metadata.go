package types

// Metadata is a map of string key-value pairs for additional information
type Metadata map[string]string
