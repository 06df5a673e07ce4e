// Package strategy contains trading signal generation logic applied to daily bar series.
package strategy

import (
	"errors"
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"crossbot-go/internal/signal"
)

// ErrInvalidWindow reports a window configuration that cannot produce a crossover.
var ErrInvalidWindow = errors.New("invalid window")

type averageFunc func(closes []float64, window int) []float64

// Crossover emits a long signal while the short average sits strictly above the long average.
type Crossover struct {
	name        string
	shortWindow int
	longWindow  int
	average     averageFunc
}

// NewCrossover builds a simple-moving-average crossover. Requires 0 < short < long.
func NewCrossover(shortWindow, longWindow int) (*Crossover, error) {
	return newCrossover(NameSMACrossover, shortWindow, longWindow, simpleAverage)
}

// NewEMACrossover builds the exponential variant with the same gating and event rules.
func NewEMACrossover(shortWindow, longWindow int) (*Crossover, error) {
	return newCrossover(NameEMACrossover, shortWindow, longWindow, exponentialAverage)
}

func newCrossover(name string, shortWindow, longWindow int, avg averageFunc) (*Crossover, error) {
	if err := validateWindows(shortWindow, longWindow); err != nil {
		return nil, err
	}
	return &Crossover{name: name, shortWindow: shortWindow, longWindow: longWindow, average: avg}, nil
}

func validateWindows(shortWindow, longWindow int) error {
	if shortWindow <= 0 || longWindow <= 0 {
		return fmt.Errorf("%w: windows must be positive (short=%d long=%d)", ErrInvalidWindow, shortWindow, longWindow)
	}
	if shortWindow >= longWindow {
		return fmt.Errorf("%w: short window %d must be smaller than long window %d", ErrInvalidWindow, shortWindow, longWindow)
	}
	return nil
}

// Name returns the configured identifier for logging.
func (c *Crossover) Name() string { return c.name }

// Windows returns the short and long lookbacks.
func (c *Crossover) Windows() (int, int) { return c.shortWindow, c.longWindow }

// Generate derives averages, positions and events aligned to the series.
// Positions stay flat until longWindow bars have elapsed, even when both averages already exist.
func (c *Crossover) Generate(series signal.Series) (signal.Frame, error) {
	if c == nil || c.average == nil {
		return signal.Frame{}, fmt.Errorf("%w: crossover not initialised", ErrInvalidWindow)
	}
	if err := validateWindows(c.shortWindow, c.longWindow); err != nil {
		return signal.Frame{}, err
	}

	closes := series.Closes()
	short := c.average(closes, c.shortWindow)
	long := c.average(closes, c.longWindow)

	points := make([]signal.Point, len(closes))
	prev := signal.Flat
	for i, bar := range series.Bars {
		pos := signal.Flat
		if i >= c.longWindow && signal.Defined(short[i]) && signal.Defined(long[i]) && short[i] > long[i] {
			pos = signal.Long
		}
		event := 0
		if i > 0 {
			event = int(pos) - int(prev)
		}
		points[i] = signal.Point{
			Time:   bar.Time,
			Close:  bar.Close,
			Short:  short[i],
			Long:   long[i],
			Signal: pos,
			Event:  event,
		}
		prev = pos
	}

	return signal.Frame{
		Strategy:    c.name,
		ShortWindow: c.shortWindow,
		LongWindow:  c.longWindow,
		Points:      points,
	}, nil
}

// simpleAverage is the trailing arithmetic mean; the first window-1 values are NaN.
// The window sum is carried in decimal so a run of identical closes averages to exactly that close.
// Windows touching a non-finite close are NaN.
func simpleAverage(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	if window == 1 {
		copy(out, closes)
		return out
	}
	values := make([]decimal.Decimal, len(closes))
	invalid := 0
	sum := decimal.Zero
	size := decimal.NewFromInt(int64(window))
	for i, c := range closes {
		if finite(c) {
			values[i] = decimal.NewFromFloat(c)
			sum = sum.Add(values[i])
		} else {
			invalid++
		}
		if i >= window {
			if finite(closes[i-window]) {
				sum = sum.Sub(values[i-window])
			} else {
				invalid--
			}
		}
		if i >= window-1 && invalid == 0 {
			out[i] = sum.Div(size).InexactFloat64()
		}
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// exponentialAverage seeds with the simple mean of the first window closes.
func exponentialAverage(closes []float64, window int) []float64 {
	out := undefinedSeries(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	if window == 1 {
		copy(out, closes)
		return out
	}
	copy(out[window-1:], talib.Ema(closes, window)[window-1:])
	return out
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
