package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
)

// ParamRSISaturation is the Params key overriding the output emitted
// when the average loss is zero. Defaults to 100.
const ParamRSISaturation = "saturation"

// RSI calculates the Relative Strength Index. The first bar only
// records the price; gains and losses accumulate from the second bar
// on, and the output is unavailable until a full period of changes has
// been observed. An all-gain window saturates the output instead of
// dividing by zero.
type RSI struct {
	cfg        Config
	saturation decimal.Decimal

	gains   []decimal.Decimal
	losses  []decimal.Decimal
	gainSum decimal.Decimal
	lossSum decimal.Decimal

	lastPrice decimal.Decimal
	hasLast   bool

	hist *ring
}

// NewRSI creates an RSI over the close price with default history cap
// and saturation value.
func NewRSI(period int) *RSI {
	r, _ := newRSIFromConfig(Config{Kind: KindRSI, Period: period}.normalize())
	return r
}

func newRSIFromConfig(cfg Config) (*RSI, error) {
	if cfg.Period < 1 {
		cfg.Period = 1
	}

	saturation := DefaultRSISaturation
	if raw, ok := cfg.Params[ParamRSISaturation]; ok {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: rsi saturation %q", types.ErrInvalidConfig, raw)
		}
		saturation = d
	}

	return &RSI{
		cfg:        cfg,
		saturation: saturation,
		gains:      make([]decimal.Decimal, 0, cfg.Period),
		losses:     make([]decimal.Decimal, 0, cfg.Period),
		gainSum:    decimal.Zero,
		lossSum:    decimal.Zero,
		hist:       newRing(cfg.HistoryCap),
	}, nil
}

// Update diffs the bar's source value against the previous one, rolls
// the gain/loss windows, and appends the RSI (or Unavailable during
// warm-up) to the history.
func (r *RSI) Update(bar types.Bar) {
	price := r.cfg.Source.Extract(bar)

	if !r.hasLast {
		r.lastPrice = price
		r.hasLast = true
		r.hist.push(Unavailable())
		return
	}

	change := price.Sub(r.lastPrice)
	r.lastPrice = price

	gain := decimal.Zero
	loss := decimal.Zero
	if change.IsPositive() {
		gain = change
	} else {
		loss = change.Neg()
	}

	r.gains = append(r.gains, gain)
	r.losses = append(r.losses, loss)
	r.gainSum = r.gainSum.Add(gain)
	r.lossSum = r.lossSum.Add(loss)

	if len(r.gains) > r.cfg.Period {
		r.gainSum = r.gainSum.Sub(r.gains[0])
		r.lossSum = r.lossSum.Sub(r.losses[0])
		r.gains = r.gains[1:]
		r.losses = r.losses[1:]
	}

	if len(r.gains) < r.cfg.Period {
		r.hist.push(Unavailable())
		return
	}

	if r.lossSum.IsZero() {
		// All gains: saturate instead of dividing by zero.
		r.hist.push(NewValue(r.saturation))
		return
	}

	period := decimal.NewFromInt(int64(r.cfg.Period))
	avgGain := r.gainSum.Div(period)
	avgLoss := r.lossSum.Div(period)
	rs := avgGain.Div(avgLoss)

	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)
	r.hist.push(NewValue(hundred.Sub(hundred.Div(one.Add(rs)))))
}

// Value returns the output offset positions back from the latest.
func (r *RSI) Value(offset int) Value {
	return r.hist.at(offset)
}

// Ready returns true once a full period of price changes has been
// observed.
func (r *RSI) Ready() bool {
	return len(r.gains) >= r.cfg.Period && r.hist.latest().Valid()
}

// Reset clears the gain/loss windows, last price, and history.
// Configuration survives.
func (r *RSI) Reset() {
	r.gains = r.gains[:0]
	r.losses = r.losses[:0]
	r.gainSum = decimal.Zero
	r.lossSum = decimal.Zero
	r.lastPrice = decimal.Zero
	r.hasLast = false
	r.hist.reset()
}

// Config returns a snapshot of the instance configuration.
func (r *RSI) Config() Config {
	return r.cfg.clone()
}

// History returns a copy of the bounded output history, oldest first.
func (r *RSI) History() []Value {
	return r.hist.snapshot()
}

// AvgGain returns the current average gain, unavailable until warmed up.
func (r *RSI) AvgGain() Value {
	if len(r.gains) < r.cfg.Period {
		return Unavailable()
	}
	return NewValue(r.gainSum.Div(decimal.NewFromInt(int64(r.cfg.Period))))
}

// AvgLoss returns the current average loss, unavailable until warmed up.
func (r *RSI) AvgLoss() Value {
	if len(r.losses) < r.cfg.Period {
		return Unavailable()
	}
	return NewValue(r.lossSum.Div(decimal.NewFromInt(int64(r.cfg.Period))))
}

// RS returns the relative-strength ratio avgGain/avgLoss. It is
// unavailable until warmed up and while the average loss is zero.
func (r *RSI) RS() Value {
	if len(r.gains) < r.cfg.Period || r.lossSum.IsZero() {
		return Unavailable()
	}
	return NewValue(r.gainSum.Div(r.lossSum))
}
