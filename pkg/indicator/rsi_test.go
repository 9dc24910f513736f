package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRSI_WarmUp(t *testing.T) {
	rsi := NewRSI(2)

	// First bar records the price only; the next bar starts the
	// gain/loss windows.
	rsi.Update(testBar(10))
	if got := rsi.Value(0); got.Valid() {
		t.Errorf("first output = %s, want unavailable", got)
	}
	if rsi.Ready() {
		t.Error("RSI should not be ready after one bar")
	}

	rsi.Update(testBar(12))
	if got := rsi.Value(0); got.Valid() {
		t.Errorf("second output = %s, want unavailable (one change of two)", got)
	}

	rsi.Update(testBar(11))
	if !rsi.Ready() {
		t.Error("RSI should be ready after period changes")
	}
	if got := rsi.Value(0); !got.Valid() {
		t.Error("third output should be available")
	}
}

func TestRSI_Saturation(t *testing.T) {
	rsi := NewRSI(2)

	// Strictly increasing closes: average loss is zero once warmed up,
	// so output saturates at 100.
	closes := []float64{1, 2, 3, 4, 5}
	for _, c := range closes {
		rsi.Update(testBar(c))
	}

	hundred := NewValue(decimal.NewFromInt(100))
	if got := rsi.Value(0); !got.Equal(hundred) {
		t.Errorf("RSI = %s, want 100", got)
	}
	if got := rsi.Value(1); !got.Equal(hundred) {
		t.Errorf("RSI offset 1 = %s, want 100", got)
	}
	if got := rsi.Value(2); !got.Equal(hundred) {
		t.Errorf("RSI offset 2 = %s, want 100", got)
	}

	// RS is undefined with zero average loss.
	if rs := rsi.RS(); rs.Valid() {
		t.Errorf("RS = %s with zero losses, want unavailable", rs)
	}
}

func TestRSI_ConfiguredSaturation(t *testing.T) {
	ind, err := New(Config{
		Kind:   KindRSI,
		Period: 2,
		Params: map[string]string{ParamRSISaturation: "99.5"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, c := range []float64{1, 2, 3, 4} {
		ind.Update(testBar(c))
	}

	want := NewValue(decimal.RequireFromString("99.5"))
	if got := ind.Value(0); !got.Equal(want) {
		t.Errorf("RSI = %s, want configured saturation 99.5", got)
	}
}

func TestRSI_BalancedMoves(t *testing.T) {
	// Alternating +4/-4 moves: average gain equals average loss, so
	// RS = 1 and RSI = 50 exactly.
	rsi := NewRSI(2)

	for _, c := range []float64{10, 14, 10, 14, 10} {
		rsi.Update(testBar(c))
	}

	if got := rsi.Value(0); !got.Equal(NewValue(decimal.NewFromInt(50))) {
		t.Errorf("RSI = %s, want 50", got)
	}
	if rs := rsi.RS(); !rs.Equal(NewValue(decimal.NewFromInt(1))) {
		t.Errorf("RS = %s, want 1", rs)
	}

	gain, ok := rsi.AvgGain().Decimal()
	if !ok || !gain.Equal(decimal.NewFromInt(2)) {
		t.Errorf("AvgGain = %s, want 2", rsi.AvgGain())
	}
	loss, ok := rsi.AvgLoss().Decimal()
	if !ok || !loss.Equal(decimal.NewFromInt(2)) {
		t.Errorf("AvgLoss = %s, want 2", rsi.AvgLoss())
	}
}

func TestRSI_GainHeavyWindow(t *testing.T) {
	// Changes +6 then -2: avgGain = 3, avgLoss = 1, RS = 3, RSI = 75.
	rsi := NewRSI(2)

	for _, c := range []float64{10, 16, 14} {
		rsi.Update(testBar(c))
	}

	if got := rsi.Value(0); !got.Equal(NewValue(decimal.NewFromInt(75))) {
		t.Errorf("RSI = %s, want 75", got)
	}
	if rs := rsi.RS(); !rs.Equal(NewValue(decimal.NewFromInt(3))) {
		t.Errorf("RS = %s, want 3", rs)
	}
}

func TestRSI_MonotoneReadiness(t *testing.T) {
	rsi := NewRSI(3)

	closes := []float64{10, 11, 12, 13, 12, 12, 11, 14}
	for i, c := range closes {
		rsi.Update(testBar(c))
		ready := rsi.Ready()
		if i < 3 && ready {
			t.Errorf("ready after %d bars, want warm-up", i+1)
		}
		if i >= 3 && !ready {
			t.Errorf("not ready after %d bars, readiness must be monotone", i+1)
		}
	}
}

func TestRSI_AuxUnavailableDuringWarmUp(t *testing.T) {
	rsi := NewRSI(3)

	rsi.Update(testBar(10))
	rsi.Update(testBar(12))

	if rsi.AvgGain().Valid() {
		t.Error("AvgGain should be unavailable during warm-up")
	}
	if rsi.AvgLoss().Valid() {
		t.Error("AvgLoss should be unavailable during warm-up")
	}
	if rsi.RS().Valid() {
		t.Error("RS should be unavailable during warm-up")
	}
}

func TestRSI_Reset(t *testing.T) {
	rsi := NewRSI(2)

	for _, c := range []float64{10, 12, 14} {
		rsi.Update(testBar(c))
	}
	rsi.Reset()

	if rsi.Ready() {
		t.Error("RSI should not be ready after reset")
	}
	if len(rsi.History()) != 0 {
		t.Error("history should be empty after reset")
	}

	// First bar after reset must behave like the very first bar again.
	rsi.Update(testBar(50))
	if got := rsi.Value(0); got.Valid() {
		t.Errorf("output after reset = %s, want unavailable", got)
	}
}
