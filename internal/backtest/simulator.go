// Package backtest replays position events against an all-in/all-out cash account.
package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"crossbot-go/internal/execution"
	"crossbot-go/internal/metrics"
	"crossbot-go/internal/paper"
	"crossbot-go/internal/risk"
	"crossbot-go/internal/signal"
)

var (
	// ErrMisalignedInput reports events that do not line up with the price series.
	ErrMisalignedInput = errors.New("misaligned input")
	// ErrInvalidBalance reports a non-positive or non-finite starting balance.
	ErrInvalidBalance = errors.New("invalid initial balance")
	// ErrInvalidPrice reports a close that is non-positive or non-finite.
	ErrInvalidPrice = errors.New("invalid close price")
)

// Result is the outcome of one simulation.
type Result struct {
	InitialBalance float64
	FinalBalance   float64
	Trades         []execution.Trade
	RealizedPnL    float64
	// Liquidated is set when a long position was closed at the last close without a trade record.
	Liquidated       bool
	LiquidationValue float64
}

// Option tunes a simulation.
type Option func(*simConfig)

type simConfig struct {
	log       zerolog.Logger
	submitter *execution.Submitter
	recorder  paper.TradeRecorder
	sizer     risk.Sizer
}

// WithLogger attaches a logger for per-bar debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(c *simConfig) { c.log = log }
}

// WithSubmitter publishes every executed trade.
func WithSubmitter(s *execution.Submitter) Option {
	return func(c *simConfig) { c.submitter = s }
}

// WithRecorder mirrors every executed trade to an external recorder.
func WithRecorder(r paper.TradeRecorder) Option {
	return func(c *simConfig) { c.recorder = r }
}

// WithSizer overrides the all-in sizing policy.
func WithSizer(s risk.Sizer) Option {
	return func(c *simConfig) {
		if s != nil {
			c.sizer = s
		}
	}
}

// Simulate folds events over the series bar by bar and returns the final balance and trade ledger.
// Inputs are validated before any state is touched.
func Simulate(series signal.Series, events []signal.Event, initialBalance float64, opts ...Option) (Result, error) {
	cfg := simConfig{log: zerolog.Nop(), sizer: risk.AllIn{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateInputs(series, events, initialBalance); err != nil {
		return Result{}, err
	}

	account := paper.NewAccount(initialBalance, cfg.sizer)
	ledger := paper.NewLedger(len(events) / 2)
	execute := func(trade execution.Trade) {
		ledger.Record(trade)
		if cfg.submitter != nil {
			cfg.submitter.Submit(trade)
		}
		if cfg.recorder != nil {
			cfg.recorder.Record(trade)
		}
	}

	for i := 1; i < len(series.Bars); i++ {
		bar := series.Bars[i]
		switch delta := events[i].Delta; {
		case delta == 1 && account.State() == signal.Flat:
			qty, err := account.BuyAll(bar.Close)
			if err != nil {
				cfg.log.Debug().Err(err).Time("bar", bar.Time).Msg("buy skipped")
				continue
			}
			if qty == 0 {
				cfg.log.Debug().Time("bar", bar.Time).Float64("px", bar.Close).Msg("cash below one unit")
				continue
			}
			execute(execution.Trade{Action: execution.Buy, Time: bar.Time, Price: bar.Close, Qty: qty})
		case delta == -1 && account.State() == signal.Long:
			qty, err := account.SellAll(bar.Close)
			if err != nil {
				cfg.log.Debug().Err(err).Time("bar", bar.Time).Msg("sell skipped")
				continue
			}
			execute(execution.Trade{Action: execution.Sell, Time: bar.Time, Price: bar.Close, Qty: qty})
		}
	}
	metrics.BarsTotal.WithLabelValues(series.Symbol).Add(float64(len(series.Bars)))

	res := Result{InitialBalance: initialBalance}
	if last, ok := series.Last(); ok && account.State() == signal.Long {
		res.Liquidated = true
		res.LiquidationValue = account.Liquidate(last.Close)
		cfg.log.Debug().Float64("value", res.LiquidationValue).Time("bar", last.Time).Msg("open position liquidated")
	}
	res.FinalBalance = account.Cash()
	res.RealizedPnL = account.RealizedPnL()
	res.Trades = ledger.Snapshot()
	return res, nil
}

func validateInputs(series signal.Series, events []signal.Event, initialBalance float64) error {
	if math.IsNaN(initialBalance) || math.IsInf(initialBalance, 0) || initialBalance <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBalance, initialBalance)
	}
	if len(events) != len(series.Bars) {
		return fmt.Errorf("%w: %d events for %d bars", ErrMisalignedInput, len(events), len(series.Bars))
	}
	for i, bar := range series.Bars {
		if !events[i].Time.Equal(bar.Time) {
			return fmt.Errorf("%w: event %d at %s, bar at %s", ErrMisalignedInput, i, events[i].Time.Format("2006-01-02"), bar.Time.Format("2006-01-02"))
		}
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) || bar.Close <= 0 {
			return fmt.Errorf("%w: %v at bar %d (%s)", ErrInvalidPrice, bar.Close, i, bar.Time.Format("2006-01-02"))
		}
	}
	return nil
}
