package indicator

import (
	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
)

// EMA calculates an Exponential Moving Average. The first update seeds
// the average with the raw source value, so EMA has no warm-up gap: it
// is ready after a single bar.
type EMA struct {
	cfg         Config
	alpha       decimal.Decimal // 2 / (period + 1)
	prev        decimal.Decimal
	initialized bool
	hist        *ring
}

// NewEMA creates an EMA over the close price with default history cap.
func NewEMA(period int) *EMA {
	return newEMAFromConfig(Config{Kind: KindEMA, Period: period}.normalize())
}

func newEMAFromConfig(cfg Config) *EMA {
	if cfg.Period < 1 {
		cfg.Period = 1
	}
	two := decimal.NewFromInt(2)
	return &EMA{
		cfg:   cfg,
		alpha: two.Div(decimal.NewFromInt(int64(cfg.Period) + 1)),
		hist:  newRing(cfg.HistoryCap),
	}
}

// Update blends the bar's source value into the running average and
// appends the result to the history.
func (e *EMA) Update(bar types.Bar) {
	v := e.cfg.Source.Extract(bar)

	if !e.initialized {
		e.prev = v
		e.initialized = true
		e.hist.push(NewValue(v))
		return
	}

	// v*alpha + prev*(1-alpha) with alpha = 2/(p+1), rearranged to a
	// single division so exact inputs stay exact.
	p := int64(e.cfg.Period)
	num := v.Mul(decimal.NewFromInt(2)).Add(e.prev.Mul(decimal.NewFromInt(p - 1)))
	e.prev = num.Div(decimal.NewFromInt(p + 1))
	e.hist.push(NewValue(e.prev))
}

// Value returns the output offset positions back from the latest.
func (e *EMA) Value(offset int) Value {
	return e.hist.at(offset)
}

// Ready returns true after the first update.
func (e *EMA) Ready() bool {
	return e.initialized
}

// Reset clears the running average and history. Configuration survives.
func (e *EMA) Reset() {
	e.prev = decimal.Zero
	e.initialized = false
	e.hist.reset()
}

// Config returns a snapshot of the instance configuration.
func (e *EMA) Config() Config {
	return e.cfg.clone()
}

// History returns a copy of the bounded output history, oldest first.
func (e *EMA) History() []Value {
	return e.hist.snapshot()
}

// Alpha returns the smoothing factor 2/(period+1).
func (e *EMA) Alpha() decimal.Decimal {
	return e.alpha
}
