package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"SignalSentinel/internal/model"
)

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Timestamp int64   `parquet:"datetime,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open,optional"`
	High      float64 `parquet:"high,optional"`
	Low       float64 `parquet:"low,optional"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ReadParquetFile reads bars from a Parquet file with at least datetime,
// close and volume columns.
func ReadParquetFile(path string) ([]model.Bar, error) {
	if err := checkParquetSchema(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	bars := make([]model.Bar, len(rows))
	for i, r := range rows {
		bars[i] = model.Bar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return bars, nil
}

func checkParquetSchema(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	for _, required := range []string{"datetime", "close", "volume"} {
		if _, ok := pf.Schema().Lookup(required); !ok {
			return fmt.Errorf("%w: missing column %q", ErrInvalidSchema, required)
		}
	}
	return nil
}

// WriteParquetFile writes bars to path, creating parent directories.
func WriteParquetFile(path string, bars []model.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return parquet.WriteFile(path, records)
}
