// Package signal standardizes payloads shared between data ingestion, strategy and simulation layers.
package signal

import (
	"math"
	"time"
)

// Bar models one daily observation consumed by strategies. Only Close drives decisions.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered run of bars for a single symbol. Callers guarantee strictly increasing timestamps.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Times extracts the timestamp column.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// Last returns the final bar and false when the series is empty.
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Position is the discrete long/flat state derived from the averages.
type Position int

const (
	// Flat holds no units.
	Flat Position = 0
	// Long holds the full affordable size.
	Long Position = 1
)

// Event is the first difference of consecutive positions, stamped with the bar time.
type Event struct {
	Time  time.Time
	Delta int // +1 flat→long, -1 long→flat, 0 unchanged
}

// Point carries everything derived for a single bar.
type Point struct {
	Time   time.Time
	Close  float64
	Short  float64 // NaN until the short window is filled
	Long   float64 // NaN until the long window is filled
	Signal Position
	Event  int
}

// Frame is the aligned output of a signal generator.
type Frame struct {
	Strategy    string
	ShortWindow int
	LongWindow  int
	Points      []Point
}

// Events projects the frame onto the event sequence consumed by the simulator.
func (f Frame) Events() []Event {
	out := make([]Event, len(f.Points))
	for i, p := range f.Points {
		out[i] = Event{Time: p.Time, Delta: p.Event}
	}
	return out
}

// Signals returns the position column.
func (f Frame) Signals() []Position {
	out := make([]Position, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Signal
	}
	return out
}

// Defined reports whether an indicator value carries data.
func Defined(v float64) bool { return !math.IsNaN(v) }
