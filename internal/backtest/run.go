package backtest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crossbot-go/internal/execution"
	"crossbot-go/internal/metrics"
	"crossbot-go/internal/paper"
	"crossbot-go/internal/signal"
	"crossbot-go/internal/strategy"
)

// qualityMargin is how many bars beyond the long window a series should carry before results are trusted.
const qualityMargin = 10

// RunnerConfig wires the collaborators of a Runner.
type RunnerConfig struct {
	Strategy       strategy.Strategy
	InitialBalance float64
	Logger         zerolog.Logger
	// Recorder receives every executed trade; optional.
	Recorder paper.TradeRecorder
}

// Runner chains signal generation and simulation for one series.
type Runner struct {
	strategy       strategy.Strategy
	initialBalance float64
	log            zerolog.Logger
	recorder       paper.TradeRecorder
}

// Report is everything a run produced, exposed by value for reporting layers.
type Report struct {
	RunID    string
	Symbol   string
	Strategy string
	Frame    signal.Frame
	Result   Result
	Stats    Stats
}

// NewRunner validates the configuration and returns a runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Strategy == nil {
		return nil, errors.New("strategy is required")
	}
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBalance, cfg.InitialBalance)
	}
	return &Runner{
		strategy:       cfg.Strategy,
		initialBalance: cfg.InitialBalance,
		log:            cfg.Logger,
		recorder:       cfg.Recorder,
	}, nil
}

// Run generates the frame for series and simulates it.
func (r *Runner) Run(series signal.Series) (Report, error) {
	runID := uuid.NewString()
	log := r.log.With().Str("run", runID).Str("sym", series.Symbol).Str("strategy", r.strategy.Name()).Logger()

	frame, err := r.strategy.Generate(series)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(r.strategy.Name(), "error").Inc()
		return Report{}, fmt.Errorf("generate signals: %w", err)
	}
	if series.Len() < frame.LongWindow+qualityMargin {
		log.Warn().Int("bars", series.Len()).Int("long", frame.LongWindow).Msg("series barely covers the long window; results may be unreliable")
	}
	log.Info().Int("bars", series.Len()).Int("short", frame.ShortWindow).Int("long", frame.LongWindow).Msg("backtest started")

	opts := []Option{
		WithLogger(log),
		WithSubmitter(execution.NewSubmitter(log, series.Symbol)),
	}
	if r.recorder != nil {
		opts = append(opts, WithRecorder(r.recorder))
	}
	res, err := Simulate(series, frame.Events(), r.initialBalance, opts...)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(r.strategy.Name(), "error").Inc()
		return Report{}, fmt.Errorf("simulate: %w", err)
	}

	stats := ComputeStats(series, frame, res)
	metrics.RunsTotal.WithLabelValues(r.strategy.Name(), "ok").Inc()
	metrics.FinalBalance.WithLabelValues(series.Symbol, r.strategy.Name()).Set(res.FinalBalance)
	log.Info().
		Float64("final", res.FinalBalance).
		Float64("return_pct", stats.ReturnPct).
		Int("trades", len(res.Trades)).
		Bool("liquidated", res.Liquidated).
		Msg("backtest finished")

	return Report{
		RunID:    runID,
		Symbol:   series.Symbol,
		Strategy: r.strategy.Name(),
		Frame:    frame,
		Result:   res,
		Stats:    stats,
	}, nil
}
