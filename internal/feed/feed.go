// Package feed provides bar sources for the indicator engine.
package feed

import (
	"context"

	"github.com/tathienbao/indicator-engine/internal/types"
)

// Feed defines the interface for bar sources. Implementations can be
// historical files or live adapters; either way they guarantee bars in
// strictly increasing time order for a symbol.
type Feed interface {
	// Subscribe starts receiving bars for a symbol. The channel is
	// closed when the context is cancelled or the feed ends.
	Subscribe(ctx context.Context, symbol string) (<-chan types.Bar, error)

	// Close shuts down the feed and releases resources.
	Close() error

	// Name returns the feed identifier (e.g., "csv", "memory").
	Name() string
}
