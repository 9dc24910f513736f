// Package stream drives a set of indicators from a bar feed.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tathienbao/indicator-engine/internal/feed"
	"github.com/tathienbao/indicator-engine/internal/metrics"
	"github.com/tathienbao/indicator-engine/internal/persistence"
	"github.com/tathienbao/indicator-engine/internal/types"
	"github.com/tathienbao/indicator-engine/pkg/indicator"
)

// Config holds runner configuration.
type Config struct {
	Symbol string
}

// Snapshot is the externally visible state of one indicator after the
// most recent bar.
type Snapshot struct {
	Config indicator.Config
	Value  indicator.Value
	Ready  bool
}

// Runner consumes bars from a feed and fans each one into every
// configured indicator. Indicator instances provide no locking of
// their own, so all updates happen on the runner's single loop
// goroutine; read accessors synchronize against that loop with the
// runner mutex.
type Runner struct {
	cfg        Config
	logger     *slog.Logger
	feed       feed.Feed
	indicators []indicator.Indicator
	repo       persistence.Repository // nil = persistence disabled
	recorder   *metrics.Recorder

	mu      sync.RWMutex
	running bool
	bars    int64
	lastBar types.Bar

	done chan struct{}
	wg   sync.WaitGroup
}

// NewRunner creates a runner. repo may be nil to disable persistence.
func NewRunner(
	cfg Config,
	f feed.Feed,
	indicators []indicator.Indicator,
	repo persistence.Repository,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		cfg:        cfg,
		logger:     logger,
		feed:       f,
		indicators: indicators,
		repo:       repo,
		recorder:   metrics.NewRecorder(),
		done:       make(chan struct{}),
	}
}

// Start subscribes to the feed and starts the update loop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("runner already running")
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info("starting indicator runner",
		"symbol", r.cfg.Symbol,
		"feed", r.feed.Name(),
		"indicators", len(r.indicators),
	)

	if r.repo != nil {
		for _, ind := range r.indicators {
			if err := r.repo.SaveConfig(ctx, ind.Config()); err != nil {
				return fmt.Errorf("save indicator config: %w", err)
			}
		}
	}

	barCh, err := r.feed.Subscribe(ctx, r.cfg.Symbol)
	if err != nil {
		r.recorder.RecordFeedError(r.feed.Name())
		return fmt.Errorf("subscribe feed: %w", err)
	}

	r.wg.Add(1)
	go r.updateLoop(ctx, barCh)

	return nil
}

// Stop signals the update loop to exit and waits for it.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()

	r.logger.Info("indicator runner stopped", "bars", r.BarCount())
}

// Wait blocks until the update loop exits on its own (feed drained or
// context cancelled).
func (r *Runner) Wait() {
	r.wg.Wait()
}

// updateLoop is the single goroutine that mutates indicator state.
func (r *Runner) updateLoop(ctx context.Context, barCh <-chan types.Bar) {
	defer r.wg.Done()

	r.logger.Info("update loop started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("update loop stopped: context cancelled")
			return
		case <-r.done:
			r.logger.Info("update loop stopped: shutdown requested")
			return
		case bar, ok := <-barCh:
			if !ok {
				r.logger.Info("update loop stopped: feed drained")
				return
			}
			if err := r.processBar(ctx, bar); err != nil {
				r.logger.Error("failed to process bar",
					"timestamp", bar.Timestamp,
					"err", err,
				)
			}
		}
	}
}

// processBar updates every indicator with one bar.
func (r *Runner) processBar(ctx context.Context, bar types.Bar) error {
	timer := metrics.NewTimer()

	r.mu.Lock()
	r.lastBar = bar
	r.bars++

	points := make([]persistence.Point, 0, len(r.indicators))
	for _, ind := range r.indicators {
		ind.Update(bar)
		r.recorder.RecordUpdate(ind)

		if r.repo != nil {
			cfg := ind.Config()
			points = append(points, persistence.Point{
				IndicatorID: cfg.ID,
				Name:        cfg.Name,
				Kind:        cfg.Kind,
				Symbol:      bar.Symbol,
				Timestamp:   bar.Timestamp,
				Value:       ind.Value(0),
			})
		}
	}
	r.mu.Unlock()

	r.recorder.RecordBar(bar.Symbol)
	timer.ObserveUpdate()

	if r.repo != nil {
		if err := r.repo.SavePoints(ctx, points); err != nil {
			return fmt.Errorf("persist points: %w", err)
		}
		for range points {
			r.recorder.RecordPointPersisted()
		}
	}

	return nil
}

// ProcessBar feeds one bar directly, bypassing the feed subscription.
// Intended for callers that drive the runner synchronously.
func (r *Runner) ProcessBar(ctx context.Context, bar types.Bar) error {
	return r.processBar(ctx, bar)
}

// Snapshots returns the current state of every indicator.
func (r *Runner) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.indicators))
	for _, ind := range r.indicators {
		out = append(out, Snapshot{
			Config: ind.Config(),
			Value:  ind.Value(0),
			Ready:  ind.Ready(),
		})
	}
	return out
}

// Indicator returns the indicator with the given configured name.
func (r *Runner) Indicator(name string) (indicator.Indicator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ind := range r.indicators {
		if ind.Config().Name == name {
			return ind, true
		}
	}
	return nil, false
}

// AllReady reports whether every indicator has exited warm-up.
func (r *Runner) AllReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ind := range r.indicators {
		if !ind.Ready() {
			return false
		}
	}
	return len(r.indicators) > 0
}

// BarCount returns the number of bars processed.
func (r *Runner) BarCount() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bars
}

// LastBar returns the most recently processed bar.
func (r *Runner) LastBar() types.Bar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastBar
}

// Reset returns every indicator to its pre-first-update state.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ind := range r.indicators {
		ind.Reset()
	}
	r.bars = 0
	r.lastBar = types.Bar{}
}
