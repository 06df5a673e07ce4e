package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"crossbot-go/internal/signal"
)

func seriesFromCloses(closes ...float64) signal.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]signal.Bar, len(closes))
	for i, c := range closes {
		bars[i] = signal.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return signal.Series{Symbol: "TEST", Bars: bars}
}

func TestNewCrossoverRejectsInvalidWindows(t *testing.T) {
	cases := []struct{ short, long int }{
		{0, 5}, {-1, 5}, {3, 0}, {3, -2}, {5, 5}, {6, 5},
	}
	for _, tc := range cases {
		if _, err := NewCrossover(tc.short, tc.long); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("short=%d long=%d: expected ErrInvalidWindow, got %v", tc.short, tc.long, err)
		}
	}
}

func TestZeroValueCrossoverFails(t *testing.T) {
	var c Crossover
	if _, err := c.Generate(seriesFromCloses(1, 2, 3)); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestGenerateAverages(t *testing.T) {
	strat, err := NewCrossover(2, 3)
	if err != nil {
		t.Fatalf("NewCrossover: %v", err)
	}
	frame, err := strat.Generate(seriesFromCloses(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantShort := []float64{math.NaN(), 1.5, 2.5, 3.5, 4.5}
	wantLong := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	for i, p := range frame.Points {
		if !sameFloat(p.Short, wantShort[i]) {
			t.Fatalf("bar %d: short %.4f want %.4f", i, p.Short, wantShort[i])
		}
		if !sameFloat(p.Long, wantLong[i]) {
			t.Fatalf("bar %d: long %.4f want %.4f", i, p.Long, wantLong[i])
		}
	}
	if frame.ShortWindow != 2 || frame.LongWindow != 3 || frame.Strategy != NameSMACrossover {
		t.Fatalf("unexpected frame metadata %+v", frame)
	}
}

func TestGenerateWarmupForcesFlat(t *testing.T) {
	// At bar 1 both averages exist and short > long, but fewer than longWindow bars have elapsed.
	strat, _ := NewCrossover(1, 2)
	frame, err := strat.Generate(seriesFromCloses(10, 20, 20))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if frame.Points[1].Short <= frame.Points[1].Long {
		t.Fatalf("fixture should have short above long at bar 1")
	}
	for i, p := range frame.Points {
		if p.Signal != signal.Flat {
			t.Fatalf("bar %d: expected flat during warm-up, got %d", i, p.Signal)
		}
		if p.Event != 0 {
			t.Fatalf("bar %d: expected no event, got %d", i, p.Event)
		}
	}
}

func TestGenerateEqualPricesStayFlat(t *testing.T) {
	strat, _ := NewCrossover(1, 2)
	frame, err := strat.Generate(seriesFromCloses(10, 10, 10))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, p := range frame.Points {
		if p.Signal != signal.Flat || p.Event != 0 {
			t.Fatalf("bar %d: expected flat with no event, got signal=%d event=%d", i, p.Signal, p.Event)
		}
	}
}

func TestGenerateFlatAfterLongConstantRun(t *testing.T) {
	const plateau = 2437.15
	closes := make([]float64, 0, 620)
	for i := 0; i < 500; i++ {
		px := 2400 + 37.3*math.Sin(float64(i)/7) + 0.013*float64(i)
		closes = append(closes, math.Round(px*100)/100)
	}
	for i := 0; i < 120; i++ {
		closes = append(closes, plateau)
	}

	strat, err := NewCrossover(20, 50)
	if err != nil {
		t.Fatalf("NewCrossover: %v", err)
	}
	frame, err := strat.Generate(seriesFromCloses(closes...))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// From bar 550 both windows cover only the plateau.
	for i := 550; i < len(frame.Points); i++ {
		p := frame.Points[i]
		if p.Short != plateau || p.Long != plateau {
			t.Fatalf("bar %d: expected both averages at %.2f, got short=%.17g long=%.17g", i, plateau, p.Short, p.Long)
		}
		if p.Signal != signal.Flat || p.Event != 0 {
			t.Fatalf("bar %d: expected flat with no event, got signal=%d event=%d", i, p.Signal, p.Event)
		}
	}
}

func TestSimpleAverageSkipsNonFiniteWindows(t *testing.T) {
	got := simpleAverage([]float64{1, math.NaN(), 3, 5, 7}, 2)
	want := []float64{math.NaN(), math.NaN(), math.NaN(), 4, 6}
	for i := range want {
		if !sameFloat(got[i], want[i]) {
			t.Fatalf("bar %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateCrossEvents(t *testing.T) {
	strat, _ := NewCrossover(1, 2)
	frame, err := strat.Generate(seriesFromCloses(10, 5, 20, 20, 20, 8, 30))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantSignal := []signal.Position{0, 0, 1, 0, 0, 0, 1}
	wantEvent := []int{0, 0, 1, -1, 0, 0, 1}
	for i, p := range frame.Points {
		if p.Signal != wantSignal[i] {
			t.Fatalf("bar %d: signal %d want %d", i, p.Signal, wantSignal[i])
		}
		if p.Event != wantEvent[i] {
			t.Fatalf("bar %d: event %d want %d", i, p.Event, wantEvent[i])
		}
	}
}

func TestGenerateEventIsFirstDifference(t *testing.T) {
	strat, _ := NewCrossover(2, 4)
	frame, err := strat.Generate(seriesFromCloses(5, 6, 7, 8, 7, 5, 4, 6, 9, 12, 11, 8, 6, 5))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if frame.Points[0].Event != 0 {
		t.Fatalf("first event must be zero")
	}
	for i := 1; i < len(frame.Points); i++ {
		want := int(frame.Points[i].Signal) - int(frame.Points[i-1].Signal)
		if frame.Points[i].Event != want {
			t.Fatalf("bar %d: event %d want %d", i, frame.Points[i].Event, want)
		}
	}
	for i := 0; i < 4; i++ {
		if frame.Points[i].Signal != signal.Flat {
			t.Fatalf("bar %d: expected warm-up flat", i)
		}
	}
}

func TestGenerateShortSeries(t *testing.T) {
	strat, _ := NewCrossover(3, 10)
	frame, err := strat.Generate(seriesFromCloses(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(frame.Points) != 5 {
		t.Fatalf("expected aligned output, got %d points", len(frame.Points))
	}
	for i, p := range frame.Points {
		if p.Signal != signal.Flat || p.Event != 0 {
			t.Fatalf("bar %d: expected all-flat output", i)
		}
		if signal.Defined(p.Long) {
			t.Fatalf("bar %d: long average should be undefined", i)
		}
	}

	empty, err := strat.Generate(signal.Series{})
	if err != nil || len(empty.Points) != 0 {
		t.Fatalf("expected empty frame without error, got %d points err=%v", len(empty.Points), err)
	}
}

func TestEMACrossoverWarmup(t *testing.T) {
	strat, err := NewEMACrossover(2, 3)
	if err != nil {
		t.Fatalf("NewEMACrossover: %v", err)
	}
	frame, err := strat.Generate(seriesFromCloses(1, 2, 3, 4, 5, 6))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signal.Defined(frame.Points[1].Long) {
		t.Fatalf("long EMA should be undefined before its window fills")
	}
	if !sameFloat(frame.Points[2].Long, 2) {
		t.Fatalf("long EMA should be seeded with the simple mean, got %.4f", frame.Points[2].Long)
	}
	for i := 0; i < 3; i++ {
		if frame.Points[i].Signal != signal.Flat {
			t.Fatalf("bar %d: expected warm-up flat", i)
		}
	}
	if frame.Points[3].Signal != signal.Long {
		t.Fatalf("rising prices should put the fast EMA above the slow EMA")
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}
