package feed

import (
	"context"

	"github.com/tathienbao/indicator-engine/internal/types"
)

// MemoryFeed provides bars from an in-memory slice. Useful for testing.
type MemoryFeed struct {
	bars   []types.Bar
	symbol string
}

// NewMemoryFeed creates a feed from pre-loaded bars. A non-empty
// symbol overrides the symbol on every emitted bar.
func NewMemoryFeed(bars []types.Bar, symbol string) *MemoryFeed {
	return &MemoryFeed{
		bars:   bars,
		symbol: symbol,
	}
}

// Subscribe starts sending bars from memory.
func (f *MemoryFeed) Subscribe(ctx context.Context, symbol string) (<-chan types.Bar, error) {
	ch := make(chan types.Bar, len(f.bars))

	go func() {
		defer close(ch)
		for _, bar := range f.bars {
			if bar.Symbol != symbol && f.symbol != symbol {
				continue
			}
			if f.symbol != "" {
				bar.Symbol = f.symbol
			}
			select {
			case <-ctx.Done():
				return
			case ch <- bar:
			}
		}
	}()

	return ch, nil
}

// Close is a no-op for memory feed.
func (f *MemoryFeed) Close() error {
	return nil
}

// Name returns the feed identifier.
func (f *MemoryFeed) Name() string {
	return "memory"
}

// AddBar appends a bar to the feed.
func (f *MemoryFeed) AddBar(bar types.Bar) {
	f.bars = append(f.bars, bar)
}
