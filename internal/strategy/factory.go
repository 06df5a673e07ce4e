package strategy

import (
	"fmt"
	"strings"

	sig "crossbot-go/internal/signal"
)

const (
	// NameSMACrossover identifies the simple-moving-average crossover.
	NameSMACrossover = "sma_crossover"
	// NameEMACrossover identifies the exponential-moving-average crossover.
	NameEMACrossover = "ema_crossover"
)

// Strategy defines behaviour shared by signal generators used by the backtester.
type Strategy interface {
	Generate(series sig.Series) (sig.Frame, error)
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	ShortWindow int
	LongWindow  int
}

var modeAliases = map[string]string{
	"":              NameSMACrossover,
	"sma":           NameSMACrossover,
	"crossover":     NameSMACrossover,
	"sma_crossover": NameSMACrossover,
	"ema":           NameEMACrossover,
	"ema_crossover": NameEMACrossover,
}

// ValidMode reports whether Build accepts mode.
func ValidMode(mode string) bool {
	_, ok := modeAliases[strings.ToLower(strings.TrimSpace(mode))]
	return ok
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) (Strategy, error) {
	switch modeAliases[strings.ToLower(strings.TrimSpace(mode))] {
	case NameSMACrossover:
		return NewCrossover(params.ShortWindow, params.LongWindow)
	case NameEMACrossover:
		return NewEMACrossover(params.ShortWindow, params.LongWindow)
	default:
		return nil, fmt.Errorf("unknown strategy mode %q", mode)
	}
}
