package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// ErrInvalidSchema is returned when input data lacks the datetime, close or
// volume columns, or holds values that cannot be parsed.
var ErrInvalidSchema = errors.New("invalid input schema")

// Source loads a complete bar series.
type Source interface {
	Load(ctx context.Context) (*model.Series, error)
	Name() string
}

// FileSource reads bars from a CSV or Parquet file.
type FileSource struct {
	Path   string
	Format string // "csv", "parquet" or empty to infer from the extension
	Symbol string
	// Location, when set, is the zone entry hours are read in.
	Location *time.Location
}

// NewFileSource creates a FileSource.
func NewFileSource(path, format, symbol string) *FileSource {
	return &FileSource{Path: path, Format: format, Symbol: symbol}
}

func (f *FileSource) Name() string { return "file:" + f.Path }

// Load reads and validates the file.
func (f *FileSource) Load(_ context.Context) (*model.Series, error) {
	var (
		bars []model.Bar
		err  error
	)
	switch f.format() {
	case "csv":
		bars, err = ReadCSVFile(f.Path)
	case "parquet":
		bars, err = ReadParquetFile(f.Path)
	default:
		return nil, fmt.Errorf("unsupported data format %q", f.Format)
	}
	if err != nil {
		return nil, err
	}
	return newSeries(f.Symbol, bars, f.Location)
}

func (f *FileSource) format() string {
	if f.Format != "" {
		return strings.ToLower(f.Format)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
}

// newSeries validates bars and moves them into loc when it is non-nil.
// Instants are unchanged; only the hour-of-day view follows loc.
func newSeries(symbol string, bars []model.Bar, loc *time.Location) (*model.Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidSchema)
	}
	for i, b := range bars {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return nil, fmt.Errorf("%w: close %v at %s must be positive and finite",
				ErrInvalidSchema, b.Close, b.Time.Format(time.RFC3339))
		}
		if loc != nil {
			bars[i].Time = b.Time.In(loc)
		}
	}
	s, err := model.NewSeries(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return s, nil
}

// NewSource returns a FileSource when path is set and a YahooSource otherwise.
// A nil loc keeps each timestamp's own zone.
func NewSource(path, format, symbol, rng, proxy string, loc *time.Location) Source {
	if path != "" {
		return &FileSource{Path: path, Format: format, Symbol: symbol, Location: loc}
	}
	return &YahooSource{Fetcher: NewYahooFetcher(proxy), Symbol: symbol, Range: rng, Location: loc}
}
