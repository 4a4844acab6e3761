package config

import (
	"io"
	"time"
)

// DurationConfig reads integer values and scales them to a time unit.
//
// A key holding 5 read through GetMinute yields 5 minutes. Missing keys yield 0.
type DurationConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or unparsable keys yield 0.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
}

// Config is the read side of the application configuration.
//
// Values may come from the config file, from environment variables or from
// registered defaults, in that order of precedence reversed (env wins).
type Config interface {
	io.Closer
	DurationConfig
	NumberConfig

	// IsSet reports whether key has a value from any source.
	IsSet(key string) bool

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 encoded value. Invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray splits a "a,b,c" value. Elements are trimmed and empty ones dropped.
	GetArray(key string) []string

	// GetMap parses a "k1:v1,k2:v2" value.
	GetMap(key string) map[string]string
}
