package indicator

import (
	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
)

// SMA calculates a Simple Moving Average over the configured source
// field. The output is unavailable until the window holds a full
// period of samples.
type SMA struct {
	cfg    Config
	window []decimal.Decimal
	sum    decimal.Decimal
	hist   *ring
}

// NewSMA creates an SMA over the close price with default history cap.
func NewSMA(period int) *SMA {
	return newSMAFromConfig(Config{Kind: KindSMA, Period: period}.normalize())
}

func newSMAFromConfig(cfg Config) *SMA {
	if cfg.Period < 1 {
		cfg.Period = 1
	}
	return &SMA{
		cfg:    cfg,
		window: make([]decimal.Decimal, 0, cfg.Period),
		sum:    decimal.Zero,
		hist:   newRing(cfg.HistoryCap),
	}
}

// Update adds the bar's source value to the rolling window and appends
// the current mean (or Unavailable during warm-up) to the history.
func (s *SMA) Update(bar types.Bar) {
	v := s.cfg.Source.Extract(bar)

	s.window = append(s.window, v)
	s.sum = s.sum.Add(v)

	if len(s.window) > s.cfg.Period {
		s.sum = s.sum.Sub(s.window[0])
		s.window = s.window[1:]
	}

	if len(s.window) < s.cfg.Period {
		s.hist.push(Unavailable())
		return
	}

	s.hist.push(NewValue(s.sum.Div(decimal.NewFromInt(int64(s.cfg.Period)))))
}

// Value returns the output offset positions back from the latest.
func (s *SMA) Value(offset int) Value {
	return s.hist.at(offset)
}

// Ready returns true once the window holds a full period of samples.
func (s *SMA) Ready() bool {
	return len(s.window) >= s.cfg.Period && s.hist.latest().Valid()
}

// Reset clears the window and history. Configuration survives.
func (s *SMA) Reset() {
	s.window = s.window[:0]
	s.sum = decimal.Zero
	s.hist.reset()
}

// Config returns a snapshot of the instance configuration.
func (s *SMA) Config() Config {
	return s.cfg.clone()
}

// History returns a copy of the bounded output history, oldest first.
func (s *SMA) History() []Value {
	return s.hist.snapshot()
}

// Count returns the number of samples currently in the window.
func (s *SMA) Count() int {
	return len(s.window)
}
