package feed

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
	"golang.org/x/time/rate"
)

// CSVFeed replays historical bars from a CSV file.
// CSV format: timestamp,open,high,low,close,volume
// Timestamp format: 2006-01-02 15:04:05 or Unix timestamp
type CSVFeed struct {
	filePath string
	symbol   string
	limiter  *rate.Limiter // nil = emit as fast as possible
	buffer   int
	bars     []types.Bar
	loaded   bool
}

// CSVOption configures a CSVFeed.
type CSVOption func(*CSVFeed)

// WithReplayRate throttles emission to at most barsPerSec bars per
// second, approximating a live feed during replay.
func WithReplayRate(barsPerSec float64) CSVOption {
	return func(f *CSVFeed) {
		if barsPerSec > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(barsPerSec), 1)
		}
	}
}

// WithChannelBuffer sets the subscription channel buffer size.
func WithChannelBuffer(n int) CSVOption {
	return func(f *CSVFeed) {
		if n > 0 {
			f.buffer = n
		}
	}
}

// NewCSVFeed creates a feed that reads bars for symbol from a CSV file.
func NewCSVFeed(filePath, symbol string, opts ...CSVOption) *CSVFeed {
	f := &CSVFeed{
		filePath: filePath,
		symbol:   symbol,
		buffer:   100,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe starts sending historical bars. The channel closes when
// all data has been sent or the context is cancelled.
func (f *CSVFeed) Subscribe(ctx context.Context, symbol string) (<-chan types.Bar, error) {
	if !f.loaded {
		if err := f.load(); err != nil {
			return nil, err
		}
	}

	ch := make(chan types.Bar, f.buffer)

	go func() {
		defer close(ch)
		for _, bar := range f.bars {
			if bar.Symbol != symbol {
				continue
			}
			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return
				}
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

// Close releases resources.
func (f *CSVFeed) Close() error {
	f.bars = nil
	f.loaded = false
	return nil
}

// Name returns the feed identifier.
func (f *CSVFeed) Name() string {
	return "csv"
}

// BarCount returns the number of loaded bars.
func (f *CSVFeed) BarCount() int {
	return len(f.bars)
}

// load reads and parses the CSV file.
func (f *CSVFeed) load() error {
	file, err := os.Open(f.filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	bars, err := ParseCSV(file, f.symbol)
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	f.bars = bars
	f.loaded = true
	return nil
}

// ParseCSV parses bars from a CSV reader. An optional header row is
// skipped; malformed rows are skipped rather than failing the load.
func ParseCSV(r io.Reader, symbol string) ([]types.Bar, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true

	var bars []types.Bar
	lineNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		lineNum++

		// Skip header row
		if lineNum == 1 && isHeader(record) {
			continue
		}

		if len(record) < 5 {
			continue
		}

		bar, err := parseRecord(record, symbol)
		if err != nil {
			continue
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// parseRecord parses a single CSV record into a Bar.
func parseRecord(record []string, symbol string) (types.Bar, error) {
	var bar types.Bar
	bar.Symbol = symbol

	ts, err := parseTimestamp(record[0])
	if err != nil {
		return bar, fmt.Errorf("parse timestamp: %w", err)
	}
	bar.Timestamp = ts

	bar.Open, err = decimal.NewFromString(record[1])
	if err != nil {
		return bar, fmt.Errorf("parse open: %w", err)
	}

	bar.High, err = decimal.NewFromString(record[2])
	if err != nil {
		return bar, fmt.Errorf("parse high: %w", err)
	}

	bar.Low, err = decimal.NewFromString(record[3])
	if err != nil {
		return bar, fmt.Errorf("parse low: %w", err)
	}

	bar.Close, err = decimal.NewFromString(record[4])
	if err != nil {
		return bar, fmt.Errorf("parse close: %w", err)
	}

	// Volume is optional
	if len(record) > 5 {
		vol, err := strconv.ParseInt(record[5], 10, 64)
		if err == nil {
			bar.Volume = vol
		}
	}

	return bar, nil
}

// parseTimestamp tries multiple timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	// Try Unix timestamp first
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04",
		"2006-01-02",
		"01/02/2006 15:04:05",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unknown timestamp format: %s", s)
}

// isHeader checks if a record looks like a header row.
func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	headers := []string{"timestamp", "time", "date", "datetime", "open", "high", "low", "close"}
	first := record[0]
	for _, h := range headers {
		if first == h {
			return true
		}
	}
	return false
}
