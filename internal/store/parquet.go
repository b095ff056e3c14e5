package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"koduck/pkg/koduck"
)

// Compile-time interface check.
var _ KlineStore = (*ParquetStore)(nil)

// ParquetStore implements KlineStore using one Parquet file per symbol.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for kline data.
type BarRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
	Amount    float64 `parquet:"amount"`
}

func toRecord(b koduck.KlineBar) BarRecord {
	return BarRecord{
		Timestamp: b.Timestamp,
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
		Amount:    b.Amount,
	}
}

func (r BarRecord) bar() koduck.KlineBar {
	return koduck.KlineBar{
		Timestamp: r.Timestamp,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		Amount:    r.Amount,
	}
}

// ---------------------------------------------------------------------------
// KlineStore implementation
// ---------------------------------------------------------------------------

// WriteBars merges bars into the symbol's file at:
//
//	<DataDir>/<market>/<timeframe>/<SYMBOL>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, market, timeframe, symbol string, bars []koduck.KlineBar) error {
	if len(bars) == 0 {
		return nil
	}
	path := s.barPath(market, timeframe, symbol)

	existing, err := readParquetFile[BarRecord](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading cached bars for %s: %w", symbol, err)
	}

	incoming := make([]BarRecord, len(bars))
	for i, b := range bars {
		incoming[i] = toRecord(b)
	}
	merged := mergeBarRecords(existing, incoming)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing bars for %s/%s/%s: %w", market, timeframe, symbol, err)
	}
	return nil
}

// ReadBars reads cached bars for the given symbol and time range.
func (s *ParquetStore) ReadBars(_ context.Context, market, timeframe, symbol string, start, end time.Time) ([]koduck.KlineBar, error) {
	records, err := readParquetFile[BarRecord](s.barPath(market, timeframe, symbol))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bars []koduck.KlineBar
	for _, r := range records {
		ts := time.UnixMilli(r.Timestamp)
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		bars = append(bars, r.bar())
	}
	return bars, nil
}

// LatestTimestamp returns the time of the newest cached bar.
func (s *ParquetStore) LatestTimestamp(_ context.Context, market, timeframe, symbol string) (time.Time, error) {
	records, err := readParquetFile[BarRecord](s.barPath(market, timeframe, symbol))
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if len(records) == 0 {
		return time.Time{}, nil
	}
	// Files are written sorted by timestamp.
	return time.UnixMilli(records[len(records)-1].Timestamp), nil
}

// ListSymbols lists all symbols cached for market and timeframe.
func (s *ParquetStore) ListSymbols(_ context.Context, market, timeframe string) ([]string, error) {
	dir := filepath.Join(s.DataDir, market, timeframe)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), ".parquet"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// barPath returns the filesystem path for a kline Parquet file.
// Layout: <dataDir>/<market>/<timeframe>/<SYMBOL>.parquet
func (s *ParquetStore) barPath(market, timeframe, symbol string) string {
	return filepath.Join(s.DataDir, market, timeframe, strings.ToUpper(symbol)+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, records); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by timestamp, preferring new
// records over existing ones. Results are sorted by timestamp.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	seen := make(map[int64]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
