package calculator

import (
	"math"
	"testing"
	"time"

	"SignalSentinel/internal/model"
)

func TestRSISeries_StrictlyIncreasingSaturates(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, err := RSISeries(closes, 14)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Errorf("index %d: expected NaN before warm-up, got %.2f", i, rsi[i])
		}
	}
	if rsi[14] != 100 {
		t.Errorf("index 14: expected exactly 100, got %v", rsi[14])
	}
}

func TestRSISeries_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   float64 // value at index period
		nan    bool
	}{
		{"flat is undefined", []float64{5, 5, 5, 5}, 3, 0, true},
		{"falling is zero", []float64{9, 8, 7, 6}, 3, 0, false},
		{"balanced is fifty", []float64{1, 2, 1}, 2, 50, false},
		{"three to one", []float64{10, 13, 12}, 2, 75, false},
	}
	for _, tt := range tests {
		rsi, err := RSISeries(tt.closes, tt.period)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		got := rsi[tt.period]
		if tt.nan {
			if !math.IsNaN(got) {
				t.Errorf("%s: expected NaN, got %v", tt.name, got)
			}
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
}

func TestRSISeries_InvalidPeriod(t *testing.T) {
	if _, err := RSISeries([]float64{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestRSISeries_ShortInputAllUndefined(t *testing.T) {
	rsi, err := RSISeries([]float64{1, 2, 3}, 14)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range rsi {
		if !math.IsNaN(v) {
			t.Errorf("index %d: expected NaN, got %v", i, v)
		}
	}
}

func TestRollingMean(t *testing.T) {
	got, err := RollingMean([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("expected NaN for first window-1 values, got %v", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if got[i+2] != w {
			t.Errorf("index %d: expected %.1f, got %.1f", i+2, w, got[i+2])
		}
	}
	if _, err := RollingMean([]float64{1}, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestCalculateSMA(t *testing.T) {
	if _, err := CalculateSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for insufficient data")
	}
	avg, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if avg != 3.5 {
		t.Errorf("expected 3.5, got %v", avg)
	}
}

func TestBuildFrame(t *testing.T) {
	start := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 16)
	for i := range bars {
		bars[i] = model.Bar{Time: start.Add(time.Duration(i) * time.Hour), Close: 100 + float64(i), Volume: 10}
	}
	series, err := model.NewSeries("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := BuildFrame(series, DefaultRSIPeriod, DefaultVolumeWindow)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Len() != series.Len() {
		t.Fatalf("frame length %d, series length %d", frame.Len(), series.Len())
	}
	if frame.Hour(0) != 22 || frame.Hour(2) != 0 {
		t.Errorf("unexpected hours: %d, %d", frame.Hour(0), frame.Hour(2))
	}
	if _, ok := frame.AvgVolume(8); ok {
		t.Error("avg volume must be undefined before the window fills")
	}
	if v, ok := frame.AvgVolume(9); !ok || v != 10 {
		t.Errorf("expected avg volume 10 at index 9, got %v (%v)", v, ok)
	}
	if v, ok := frame.RSI(14); !ok || v != 100 {
		t.Errorf("expected rsi 100 at index 14, got %v (%v)", v, ok)
	}
}
