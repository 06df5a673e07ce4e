package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"crossbot-go/internal/strategy"
)

var knownProviders = map[string]struct{}{
	"stub":    {},
	"csv":     {},
	"yahoo":   {},
	"binance": {},
}

// Validate checks the tunables the backtest depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Strategy.ShortWindow <= 0 || c.Strategy.LongWindow <= 0 {
		errs = append(errs, fmt.Errorf("strategy windows must be positive (short=%d long=%d)", c.Strategy.ShortWindow, c.Strategy.LongWindow))
	} else if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		errs = append(errs, fmt.Errorf("short window %d must be smaller than long window %d", c.Strategy.ShortWindow, c.Strategy.LongWindow))
	}
	if b := c.Backtest.InitialBalance; b <= 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		errs = append(errs, fmt.Errorf("initial balance must be positive, got %v", b))
	}
	provider := strings.ToLower(strings.TrimSpace(c.Data.Provider))
	if _, ok := knownProviders[provider]; !ok {
		errs = append(errs, fmt.Errorf("unknown data provider %q", c.Data.Provider))
	}
	if provider == "csv" && strings.TrimSpace(c.Data.CSVPath) == "" {
		errs = append(errs, errors.New("csv provider requires data.csv_path"))
	}
	if !strategy.ValidMode(c.Strategy.Mode) {
		errs = append(errs, fmt.Errorf("unknown strategy mode %q", c.Strategy.Mode))
	}
	if strings.TrimSpace(c.Data.Symbol) == "" {
		errs = append(errs, errors.New("data.symbol is required"))
	}
	for _, s := range c.Sweep.ShortWindows {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("sweep short window %d must be positive", s))
		}
	}
	for _, l := range c.Sweep.LongWindows {
		if l <= 0 {
			errs = append(errs, fmt.Errorf("sweep long window %d must be positive", l))
		}
	}
	return errors.Join(errs...)
}
