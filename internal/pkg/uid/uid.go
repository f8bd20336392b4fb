// Package uid provides the identifier generators the application depends on:
// string IDs for tokens and correlation IDs, and int64 IDs for storage rows.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates int64 identifiers safe for use as primary keys.
type NumberID interface {
	Generate() int64
}
