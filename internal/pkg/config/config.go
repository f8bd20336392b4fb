package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving duration configuration values.
type TimeConfig interface {
	// GetSecond reads the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads the value for key as a number of minutes.
	GetMinute(key string) time.Duration
}

// Config defines the methods for retrieving configuration values of the types
// this application needs. Implementations handle missing keys and type
// conversion by returning zero values.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool reads the value for key as a bool.
	GetBool(key string) bool

	// GetInt reads the value for key as an int.
	GetInt(key string) int

	// GetInt32 reads the value for key as an int32.
	GetInt32(key string) int32

	// GetFloat64 reads the value for key as a float64.
	GetFloat64(key string) float64

	// GetString reads the value for key as a string.
	GetString(key string) string

	// GetArray reads the value for key as a slice of strings.
	GetArray(key string) []string

	// GetBinary reads the value for key as bytes. The stored value is
	// base64 encoded.
	GetBinary(key string) []byte
}
