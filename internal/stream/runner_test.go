package stream

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/feed"
	"github.com/tathienbao/indicator-engine/internal/persistence"
	"github.com/tathienbao/indicator-engine/internal/types"
	"github.com/tathienbao/indicator-engine/pkg/indicator"
)

func testBars(closes ...float64) []types.Bar {
	base := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	bars := make([]types.Bar, 0, len(closes))
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		bars = append(bars, types.Bar{
			Symbol:    "MES",
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:      d,
			High:      d,
			Low:       d,
			Close:     d,
			Volume:    100,
		})
	}
	return bars
}

func testIndicators(t *testing.T) []indicator.Indicator {
	t.Helper()
	var out []indicator.Indicator
	for _, cfg := range []indicator.Config{
		{Name: "sma-3", Kind: indicator.KindSMA, Period: 3},
		{Name: "ema-3", Kind: indicator.KindEMA, Period: 3},
		{Name: "rsi-2", Kind: indicator.KindRSI, Period: 2},
	} {
		ind, err := indicator.New(cfg)
		if err != nil {
			t.Fatalf("New(%s): %v", cfg.Name, err)
		}
		out = append(out, ind)
	}
	return out
}

func TestRunner_DrainsFeed(t *testing.T) {
	bars := testBars(10, 11, 12, 13, 14)
	f := feed.NewMemoryFeed(bars, "MES")
	r := NewRunner(Config{Symbol: "MES"}, f, testIndicators(t), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Wait()

	if r.BarCount() != 5 {
		t.Errorf("BarCount = %d, want 5", r.BarCount())
	}
	if !r.LastBar().Close.Equal(decimal.NewFromInt(14)) {
		t.Errorf("LastBar close = %s, want 14", r.LastBar().Close)
	}

	// SMA(3) over the last window [12, 13, 14] = 13.
	sma, ok := r.Indicator("sma-3")
	if !ok {
		t.Fatal("sma-3 not found")
	}
	if got := sma.Value(0); !got.Equal(indicator.NewValue(decimal.NewFromInt(13))) {
		t.Errorf("sma-3 = %s, want 13", got)
	}

	if !r.AllReady() {
		t.Error("all indicators should be ready after 5 rising bars")
	}
}

func TestRunner_StartTwice(t *testing.T) {
	f := feed.NewMemoryFeed(testBars(10), "MES")
	r := NewRunner(Config{Symbol: "MES"}, f, testIndicators(t), nil, nil)

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	r.Wait()
	r.Stop()
}

func TestRunner_Snapshots(t *testing.T) {
	r := NewRunner(Config{Symbol: "MES"}, feed.NewMemoryFeed(nil, "MES"), testIndicators(t), nil, nil)

	ctx := context.Background()
	for _, bar := range testBars(10, 12) {
		if err := r.ProcessBar(ctx, bar); err != nil {
			t.Fatalf("ProcessBar: %v", err)
		}
	}

	snaps := r.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}

	for _, snap := range snaps {
		switch snap.Config.Name {
		case "ema-3":
			if !snap.Ready {
				t.Error("ema-3 should be ready after first bar")
			}
			if !snap.Value.Valid() {
				t.Error("ema-3 value should be available")
			}
		case "sma-3", "rsi-2":
			if snap.Ready {
				t.Errorf("%s should still be warming up", snap.Config.Name)
			}
			if snap.Value.Valid() {
				t.Errorf("%s value should be unavailable", snap.Config.Name)
			}
		default:
			t.Errorf("unexpected snapshot %q", snap.Config.Name)
		}
	}
}

func TestRunner_PersistsPoints(t *testing.T) {
	repo, err := persistence.NewSQLiteRepository(filepath.Join(t.TempDir(), "points.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	inds := testIndicators(t)
	f := feed.NewMemoryFeed(testBars(10, 11, 12, 13), "MES")
	r := NewRunner(Config{Symbol: "MES"}, f, inds, repo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Wait()

	// Configs saved up front.
	configs, err := repo.GetConfigs(ctx)
	if err != nil {
		t.Fatalf("GetConfigs: %v", err)
	}
	if len(configs) != 3 {
		t.Errorf("stored %d configs, want 3", len(configs))
	}

	// One point per indicator per bar.
	smaID := inds[0].Config().ID
	points, err := repo.GetPoints(ctx, smaID, 100)
	if err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("stored %d points for sma, want 4", len(points))
	}

	// Newest point is SMA(3) of [11, 12, 13] = 12; oldest is warm-up NULL.
	if !points[0].Value.Equal(indicator.NewValue(decimal.NewFromInt(12))) {
		t.Errorf("newest value = %s, want 12", points[0].Value)
	}
	if points[len(points)-1].Value.Valid() {
		t.Errorf("oldest value = %s, want unavailable", points[len(points)-1].Value)
	}
}

func TestRunner_Reset(t *testing.T) {
	r := NewRunner(Config{Symbol: "MES"}, feed.NewMemoryFeed(nil, "MES"), testIndicators(t), nil, nil)

	ctx := context.Background()
	for _, bar := range testBars(10, 11, 12, 13) {
		if err := r.ProcessBar(ctx, bar); err != nil {
			t.Fatalf("ProcessBar: %v", err)
		}
	}
	if !r.AllReady() {
		t.Fatal("indicators should be ready before reset")
	}

	r.Reset()

	if r.BarCount() != 0 {
		t.Errorf("BarCount = %d after reset, want 0", r.BarCount())
	}
	if r.AllReady() {
		t.Error("indicators should not be ready after reset")
	}
	for _, snap := range r.Snapshots() {
		if snap.Value.Valid() {
			t.Errorf("%s value = %s after reset, want unavailable", snap.Config.Name, snap.Value)
		}
	}
}

func TestRunner_AllReadyEmpty(t *testing.T) {
	r := NewRunner(Config{Symbol: "MES"}, feed.NewMemoryFeed(nil, "MES"), nil, nil, nil)
	if r.AllReady() {
		t.Error("AllReady should be false with no indicators")
	}
}
