// Package indicator provides streaming technical indicator calculations.
//
// Each indicator consumes OHLCV bars one at a time and appends its
// output to a bounded history. Warm-up outputs are explicit Unavailable
// values rather than zeros, so callers can always distinguish "no data
// yet" from a computed result.
//
// Indicator instances are not safe for concurrent use; a caller that
// shares one instance across goroutines must serialize access itself.
package indicator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
)

// Defaults applied when a Config leaves the field zero.
const (
	DefaultHistoryCap = 1000
)

// DefaultRSISaturation is the RSI output when the average loss is zero.
var DefaultRSISaturation = decimal.NewFromInt(100)

// Kind identifies an indicator algorithm.
type Kind string

// Supported indicator kinds.
const (
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
	KindRSI Kind = "rsi"
)

// Valid reports whether the kind is a supported algorithm.
func (k Kind) Valid() bool {
	switch k {
	case KindSMA, KindEMA, KindRSI:
		return true
	}
	return false
}

// Source selects which bar field an indicator consumes.
type Source string

// Bar fields an indicator can read.
const (
	SourceOpen   Source = "open"
	SourceHigh   Source = "high"
	SourceLow    Source = "low"
	SourceClose  Source = "close"
	SourceVolume Source = "volume"
)

// Extract returns the selected scalar from a bar. Unknown or empty
// selectors fall back to the close price.
func (s Source) Extract(bar types.Bar) decimal.Decimal {
	switch s {
	case SourceOpen:
		return bar.Open
	case SourceHigh:
		return bar.High
	case SourceLow:
		return bar.Low
	case SourceVolume:
		return bar.VolumeDecimal()
	default:
		return bar.Close
	}
}

// Valid reports whether the selector names a known bar field.
func (s Source) Valid() bool {
	switch s {
	case SourceOpen, SourceHigh, SourceLow, SourceClose, SourceVolume:
		return true
	}
	return false
}

// Config describes an indicator instance. It is a plain value: copies
// handed out by Indicator.Config are snapshots, and mutating a snapshot
// (including its Params map) never affects the live instance.
type Config struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Kind       Kind              `yaml:"kind"`
	Period     int               `yaml:"period"`
	Source     Source            `yaml:"source"`
	HistoryCap int               `yaml:"history_cap"`
	Params     map[string]string `yaml:"params"`
}

// normalize fills defaults and assigns an instance ID.
func (c Config) normalize() Config {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Source == "" {
		c.Source = SourceClose
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = DefaultHistoryCap
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("%s-%d", c.Kind, c.Period)
	}
	return c
}

// clone returns a deep copy, so snapshots do not share the Params map.
func (c Config) clone() Config {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Validate checks the config against the supported kinds and fields.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %q", types.ErrUnknownKind, c.Kind)
	}
	if c.Period < 1 {
		return fmt.Errorf("%w: %d", types.ErrInvalidPeriod, c.Period)
	}
	if c.Source != "" && !c.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", types.ErrInvalidConfig, c.Source)
	}
	return nil
}

// Indicator is the contract every streaming indicator implements.
type Indicator interface {
	// Update consumes one bar and appends an output to the history.
	// It never fails; warm-up and degenerate numeric cases produce
	// Unavailable or a saturated value per algorithm.
	Update(bar types.Bar)

	// Value returns the output offset positions back from the most
	// recent update (0 = latest). Out-of-range offsets and warm-up
	// positions yield Unavailable.
	Value(offset int) Value

	// Ready reports whether the indicator has produced a meaningful
	// value. Once true it stays true until Reset.
	Ready() bool

	// Reset returns the indicator to its pre-first-update state.
	// Configuration survives.
	Reset()

	// Config returns a snapshot of the instance configuration.
	Config() Config

	// History returns a copy of the bounded output history, oldest
	// first.
	History() []Value
}

// New constructs an indicator from a config. The config is validated
// and normalized; unset fields get defaults (source close, history cap
// 1000, generated name and ID).
func New(cfg Config) (Indicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalize()

	switch cfg.Kind {
	case KindSMA:
		return newSMAFromConfig(cfg), nil
	case KindEMA:
		return newEMAFromConfig(cfg), nil
	case KindRSI:
		return newRSIFromConfig(cfg)
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, cfg.Kind)
}
