// Package execution defines trade records and the submitter that publishes executed trades.
package execution

import (
	"time"

	"crossbot-go/internal/metrics"

	"github.com/rs/zerolog"
)

// Action enumerates trade directions used by the simulator.
type Action string

const (
	// Buy spends all available cash on whole units.
	Buy Action = "Buy"
	// Sell liquidates the entire held position.
	Sell Action = "Sell"
)

// Trade is one executed, signal-driven transition recorded in the ledger.
type Trade struct {
	Action Action    `json:"action"`
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	Qty    float64   `json:"qty"`
}

// Notional returns price times quantity.
func (t Trade) Notional() float64 { return t.Price * t.Qty }

// Submitter publishes executed trades to logs and metrics.
type Submitter struct {
	log    zerolog.Logger
	symbol string
}

// NewSubmitter wraps a zerolog logger for trade publication.
func NewSubmitter(log zerolog.Logger, symbol string) *Submitter {
	return &Submitter{log: log, symbol: symbol}
}

// Submit logs the trade and bumps the per-action counter.
func (s *Submitter) Submit(trade Trade) {
	metrics.TradesTotal.WithLabelValues(s.symbol, string(trade.Action)).Inc()
	s.log.Debug().
		Str("sym", s.symbol).
		Str("action", string(trade.Action)).
		Float64("qty", trade.Qty).
		Float64("px", trade.Price).
		Time("bar", trade.Time).
		Msg("trade executed")
}
