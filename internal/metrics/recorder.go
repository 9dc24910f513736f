package metrics

import (
	"time"

	"github.com/tathienbao/indicator-engine/pkg/indicator"
)

// Recorder provides methods for recording engine metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordBar records a consumed bar.
func (r *Recorder) RecordBar(symbol string) {
	BarsProcessed.WithLabelValues(symbol).Inc()
}

// RecordUpdate records one indicator update and its resulting state.
func (r *Recorder) RecordUpdate(ind indicator.Indicator) {
	cfg := ind.Config()
	IndicatorUpdates.WithLabelValues(cfg.Name, string(cfg.Kind)).Inc()

	if ind.Ready() {
		IndicatorReady.WithLabelValues(cfg.Name).Set(1)
	} else {
		IndicatorReady.WithLabelValues(cfg.Name).Set(0)
	}

	if d, ok := ind.Value(0).Decimal(); ok {
		IndicatorValue.WithLabelValues(cfg.Name).Set(d.InexactFloat64())
	}
}

// RecordUpdateLatency records the time spent processing one bar.
func (r *Recorder) RecordUpdateLatency(d time.Duration) {
	UpdateLatency.Observe(d.Seconds())
}

// RecordPointPersisted records one indicator point written to storage.
func (r *Recorder) RecordPointPersisted() {
	PointsPersisted.Inc()
}

// RecordFeedError records a feed failure.
func (r *Recorder) RecordFeedError(feed string) {
	FeedErrors.WithLabelValues(feed).Inc()
}

// Timer is a helper for measuring latency.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed duration.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveUpdate observes the elapsed time as bar update latency.
func (t *Timer) ObserveUpdate() {
	UpdateLatency.Observe(t.Elapsed().Seconds())
}
