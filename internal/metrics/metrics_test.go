package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tathienbao/indicator-engine/internal/types"
	"github.com/tathienbao/indicator-engine/pkg/indicator"
)

func TestRecorder_RecordBar(t *testing.T) {
	r := NewRecorder()

	r.RecordBar("MES")
	r.RecordBar("MES")
	r.RecordBar("MGC")
}

func TestRecorder_RecordUpdate(t *testing.T) {
	r := NewRecorder()

	sma := indicator.NewSMA(2)
	r.RecordUpdate(sma) // not ready, no value yet

	sma.Update(types.Bar{})
	sma.Update(types.Bar{})
	r.RecordUpdate(sma) // ready with a value
}

func TestRecorder_RecordLatency(t *testing.T) {
	r := NewRecorder()

	r.RecordUpdateLatency(50 * time.Microsecond)
	r.RecordPointPersisted()
	r.RecordFeedError("csv")
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)

	elapsed := timer.Elapsed()
	if elapsed < 10*time.Millisecond {
		t.Errorf("elapsed = %v, expected >= 10ms", elapsed)
	}
	timer.ObserveUpdate()
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("1.0.0", "abc123", "2025-08-27")
}

func TestMetricsRegistered(t *testing.T) {
	// Registration happens through promauto at init; verify the
	// collectors exist and accept observations without panicking.
	collectors := []prometheus.Collector{
		BarsProcessed,
		IndicatorUpdates,
		IndicatorReady,
		IndicatorValue,
		UpdateLatency,
		PointsPersisted,
		FeedErrors,
		BuildInfo,
	}

	for i, c := range collectors {
		if c == nil {
			t.Errorf("collector %d is nil", i)
		}
	}
}
