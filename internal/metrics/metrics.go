// Package metrics exposes Prometheus metrics for the indicator engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors, registered on the default registry.
var (
	BarsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indicator_engine_bars_processed_total",
		Help: "Total number of bars consumed, by symbol.",
	}, []string{"symbol"})

	IndicatorUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indicator_engine_updates_total",
		Help: "Total number of indicator updates, by indicator name and kind.",
	}, []string{"indicator", "kind"})

	IndicatorReady = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "indicator_engine_ready",
		Help: "Whether an indicator has exited warm-up (1) or not (0).",
	}, []string{"indicator"})

	IndicatorValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "indicator_engine_value",
		Help: "Latest available indicator output value.",
	}, []string{"indicator"})

	UpdateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indicator_engine_update_latency_seconds",
		Help:    "Time spent updating all indicators for one bar.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	PointsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indicator_engine_points_persisted_total",
		Help: "Total number of indicator points written to storage.",
	})

	FeedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indicator_engine_feed_errors_total",
		Help: "Total number of feed errors, by feed name.",
	}, []string{"feed"})

	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "indicator_engine_build_info",
		Help: "Build information. Value is always 1.",
	}, []string{"version", "commit", "build_time"})
)

// SetBuildInfo records build metadata.
func SetBuildInfo(version, commit, buildTime string) {
	BuildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}
