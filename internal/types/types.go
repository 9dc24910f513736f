// Package types defines shared types used across the indicator engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one time step of OHLCV market data.
// Bars are delivered to the engine in strictly increasing time order;
// ordering and de-duplication are the feed's responsibility.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}

// VolumeDecimal returns the bar volume as a decimal for indicator math.
func (b Bar) VolumeDecimal() decimal.Decimal {
	return decimal.NewFromInt(b.Volume)
}

// Timeframe represents a bar aggregation interval.
type Timeframe time.Duration

// Common timeframes.
const (
	Timeframe1m  = Timeframe(1 * time.Minute)
	Timeframe5m  = Timeframe(5 * time.Minute)
	Timeframe15m = Timeframe(15 * time.Minute)
	Timeframe1h  = Timeframe(1 * time.Hour)
	Timeframe1d  = Timeframe(24 * time.Hour)
)

// Duration returns the timeframe as a time.Duration.
func (t Timeframe) Duration() time.Duration {
	return time.Duration(t)
}

func (t Timeframe) String() string {
	switch t {
	case Timeframe1m:
		return "1m"
	case Timeframe5m:
		return "5m"
	case Timeframe15m:
		return "15m"
	case Timeframe1h:
		return "1h"
	case Timeframe1d:
		return "1d"
	default:
		return time.Duration(t).String()
	}
}

// ParseTimeframe parses a timeframe string like "5m" or "1h".
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "1m":
		return Timeframe1m, nil
	case "5m":
		return Timeframe5m, nil
	case "15m":
		return Timeframe15m, nil
	case "1h":
		return Timeframe1h, nil
	case "1d":
		return Timeframe1d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, ErrInvalidTimeframe
	}
	return Timeframe(d), nil
}
