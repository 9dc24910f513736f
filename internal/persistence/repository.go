// Package persistence stores computed indicator output for later
// inspection and replay comparison.
package persistence

import (
	"context"
	"time"

	"github.com/tathienbao/indicator-engine/pkg/indicator"
)

// Point is one persisted indicator output for one bar.
type Point struct {
	IndicatorID string
	Name        string
	Kind        indicator.Kind
	Symbol      string
	Timestamp   time.Time
	Value       indicator.Value // unavailable values persist as NULL
}

// Repository defines the storage interface for indicator output.
type Repository interface {
	// Config operations
	SaveConfig(ctx context.Context, cfg indicator.Config) error
	GetConfigs(ctx context.Context) ([]indicator.Config, error)

	// Point operations
	SavePoint(ctx context.Context, point Point) error
	SavePoints(ctx context.Context, points []Point) error
	GetPoints(ctx context.Context, indicatorID string, limit int) ([]Point, error)
	GetLatestPoint(ctx context.Context, indicatorID string) (*Point, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
