package types

import "errors"

// Sentinel errors for the indicator engine.
var (
	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidPeriod    = errors.New("invalid indicator period")
	ErrUnknownKind      = errors.New("unknown indicator kind")
	ErrInvalidTimeframe = errors.New("invalid timeframe")

	// Data errors
	ErrInvalidData     = errors.New("invalid market data")
	ErrDataUnavailable = errors.New("market data unavailable")

	// Storage errors
	ErrStoreClosed   = errors.New("store is closed")
	ErrPointNotFound = errors.New("indicator point not found")
)
