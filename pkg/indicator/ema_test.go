package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEMA_FirstOutputIsInput(t *testing.T) {
	ema := NewEMA(5)

	if ema.Ready() {
		t.Error("EMA should not be ready before any data")
	}

	ema.Update(testBar(42))

	want := decimal.NewFromInt(42)
	if got := ema.Value(0); !got.Equal(NewValue(want)) {
		t.Errorf("first EMA = %s, want raw input %s", got, want)
	}
	if !ema.Ready() {
		t.Error("EMA should be ready after the first update")
	}
}

func TestEMA_Smoothing(t *testing.T) {
	// Period 2: alpha = 2/3. Closes 10, 13: second output is
	// 13*(2/3) + 10*(1/3) = 12.
	ema := NewEMA(2)

	ema.Update(testBar(10))
	ema.Update(testBar(13))

	want := decimal.NewFromInt(12)
	if got := ema.Value(0); !got.Equal(NewValue(want)) {
		t.Errorf("EMA = %s, want %s", got, want)
	}
}

func TestEMA_Alpha(t *testing.T) {
	ema := NewEMA(9)

	want := decimal.NewFromInt(2).Div(decimal.NewFromInt(10))
	if !ema.Alpha().Equal(want) {
		t.Errorf("Alpha = %s, want %s", ema.Alpha(), want)
	}
}

func TestEMA_ConvergesTowardConstantInput(t *testing.T) {
	ema := NewEMA(3)

	ema.Update(testBar(10))
	for i := 0; i < 50; i++ {
		ema.Update(testBar(100))
	}

	got, ok := ema.Value(0).Decimal()
	if !ok {
		t.Fatal("EMA unavailable after 51 updates")
	}
	diff := got.Sub(decimal.NewFromInt(100)).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.0001")) {
		t.Errorf("EMA = %s, expected convergence toward 100", got)
	}
}

func TestEMA_Reset(t *testing.T) {
	ema := NewEMA(4)

	ema.Update(testBar(10))
	ema.Update(testBar(20))
	ema.Reset()

	if ema.Ready() {
		t.Error("EMA should not be ready after reset")
	}

	// After reset the next update seeds from scratch again.
	ema.Update(testBar(77))
	want := decimal.NewFromInt(77)
	if got := ema.Value(0); !got.Equal(NewValue(want)) {
		t.Errorf("EMA after reset = %s, want %s", got, want)
	}
}
