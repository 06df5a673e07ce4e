// Package sweep backtests a grid of window pairs over one series concurrently.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"crossbot-go/internal/backtest"
	"crossbot-go/internal/signal"
	"crossbot-go/internal/strategy"
)

const defaultConcurrency = 4

// Config describes the grid. Pairs with short >= long are skipped.
type Config struct {
	Mode           string
	ShortWindows   []int
	LongWindows    []int
	InitialBalance float64
	Concurrency    int
}

// Result is the outcome of one grid cell.
type Result struct {
	ShortWindow  int
	LongWindow   int
	FinalBalance float64
	ReturnPct    float64
	BuyHoldPct   float64
	Trades       int
}

type pair struct{ short, long int }

// Run evaluates every valid pair and returns results in grid order (short ascending, then long).
// The series is shared read-only; each run owns its own account.
func Run(ctx context.Context, series signal.Series, cfg Config, log zerolog.Logger) ([]Result, error) {
	pairs := grid(cfg.ShortWindows, cfg.LongWindows)
	if len(pairs) == 0 {
		return nil, errors.New("sweep grid has no pair with short < long")
	}
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	results := make([]Result, len(pairs))
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, p := range pairs {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			strat, err := strategy.Build(cfg.Mode, strategy.Params{ShortWindow: p.short, LongWindow: p.long})
			if err != nil {
				return err
			}
			runner, err := backtest.NewRunner(backtest.RunnerConfig{
				Strategy:       strat,
				InitialBalance: cfg.InitialBalance,
				Logger:         log.Level(zerolog.WarnLevel),
			})
			if err != nil {
				return err
			}
			rep, err := runner.Run(series)
			if err != nil {
				return fmt.Errorf("sweep %d/%d: %w", p.short, p.long, err)
			}
			results[i] = Result{
				ShortWindow:  p.short,
				LongWindow:   p.long,
				FinalBalance: rep.Result.FinalBalance,
				ReturnPct:    rep.Stats.ReturnPct,
				BuyHoldPct:   rep.Stats.BuyHoldPct,
				Trades:       len(rep.Result.Trades),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log.Info().Str("sym", series.Symbol).Int("runs", len(results)).Msg("sweep finished")
	return results, nil
}

// Best returns the result with the highest return; ties keep grid order.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	ranked := Ranked(results)
	return ranked[0], true
}

// Ranked returns a copy sorted by return, best first.
func Ranked(results []Result) []Result {
	out := append([]Result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReturnPct > out[j].ReturnPct })
	return out
}

func grid(shorts, longs []int) []pair {
	s := dedupe(shorts)
	l := dedupe(longs)
	var out []pair
	for _, short := range s {
		for _, long := range l {
			if short > 0 && short < long {
				out = append(out, pair{short, long})
			}
		}
	}
	return out
}

func dedupe(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}
