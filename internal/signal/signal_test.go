package signal

import (
	"math"
	"testing"
	"time"
)

func TestSeriesHelpers(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := Series{Symbol: "RELIANCE.NS", Bars: []Bar{
		{Time: day, Close: 10},
		{Time: day.AddDate(0, 0, 1), Close: 12},
	}}

	if series.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", series.Len())
	}
	closes := series.Closes()
	if closes[0] != 10 || closes[1] != 12 {
		t.Fatalf("unexpected closes %v", closes)
	}
	times := series.Times()
	if len(times) != 2 || !times[0].Equal(day) || !times[1].Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected times %v", times)
	}
	if got := (Series{}).Times(); len(got) != 0 {
		t.Fatalf("expected no times for an empty series, got %v", got)
	}
	last, ok := series.Last()
	if !ok || last.Close != 12 {
		t.Fatalf("unexpected last bar %+v", last)
	}
	if _, ok := (Series{}).Last(); ok {
		t.Fatalf("expected empty series to report no last bar")
	}
}

func TestFrameProjections(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	frame := Frame{Points: []Point{
		{Time: day, Signal: Flat, Event: 0, Short: math.NaN()},
		{Time: day.AddDate(0, 0, 1), Signal: Long, Event: 1},
	}}

	events := frame.Events()
	if len(events) != 2 || events[1].Delta != 1 || !events[1].Time.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected events %+v", events)
	}
	signals := frame.Signals()
	if signals[0] != Flat || signals[1] != Long {
		t.Fatalf("unexpected signals %v", signals)
	}
	if Defined(frame.Points[0].Short) {
		t.Fatalf("NaN should be undefined")
	}
}
