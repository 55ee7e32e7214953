package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts the common datetime spellings of exported bar data.
// Timestamps without a zone are UTC; bare integers are Unix seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// ReadCSVFile reads bars from a CSV file on disk.
func ReadCSVFile(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a header row plus data rows. Only datetime, close and volume
// are required; open, high and low are read when present.
func ReadCSV(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidSchema, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"datetime", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidSchema, required)
		}
	}

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSchema, line, err)
		}
		bar, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSchema, line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseRow(rec []string, cols map[string]int) (model.Bar, error) {
	var bar model.Bar
	ts, err := ParseTime(rec[cols["datetime"]])
	if err != nil {
		return bar, err
	}
	bar.Time = ts
	if bar.Close, err = parseRequired(rec, cols, "close"); err != nil {
		return bar, err
	}
	if bar.Volume, err = parseRequired(rec, cols, "volume"); err != nil {
		return bar, err
	}
	bar.Open = parseOptional(rec, cols, "open")
	bar.High = parseOptional(rec, cols, "high")
	bar.Low = parseOptional(rec, cols, "low")
	return bar, nil
}

func parseRequired(rec []string, cols map[string]int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[name]]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("column %s: bad value %q", name, rec[cols[name]])
	}
	return v, nil
}

func parseOptional(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	if err != nil {
		return 0
	}
	return v
}

// WriteCSVFile writes bars with the same header ReadCSV expects.
func WriteCSVFile(path string, bars []model.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"datetime", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.Format(time.RFC3339),
			fmtFloat(b.Open),
			fmtFloat(b.High),
			fmtFloat(b.Low),
			fmtFloat(b.Close),
			fmtFloat(b.Volume),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
