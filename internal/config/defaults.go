package config

const (
	DefaultSymbol         = "RELIANCE.NS"
	DefaultProvider       = "yahoo"
	DefaultPeriod         = "2y"
	DefaultInterval       = "1d"
	DefaultShortWindow    = 20
	DefaultLongWindow     = 50
	DefaultInitialBalance = 100000
	DefaultRecentTrades   = 5
	DefaultTimeoutSecs    = 15
)

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values only; explicit settings are left alone.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "crossbot"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Data.Provider == "" {
		c.Data.Provider = DefaultProvider
	}
	if c.Data.Symbol == "" {
		c.Data.Symbol = DefaultSymbol
	}
	if c.Data.Period == "" {
		c.Data.Period = DefaultPeriod
	}
	if c.Data.Interval == "" {
		c.Data.Interval = DefaultInterval
	}
	if c.Data.TimeoutS <= 0 {
		c.Data.TimeoutS = DefaultTimeoutSecs
	}
	if c.Strategy.Mode == "" {
		c.Strategy.Mode = "sma_crossover"
	}
	if c.Strategy.ShortWindow == 0 {
		c.Strategy.ShortWindow = DefaultShortWindow
	}
	if c.Strategy.LongWindow == 0 {
		c.Strategy.LongWindow = DefaultLongWindow
	}
	if c.Backtest.InitialBalance == 0 {
		c.Backtest.InitialBalance = DefaultInitialBalance
	}
	if c.Report.RecentTrades <= 0 {
		c.Report.RecentTrades = DefaultRecentTrades
	}
	if c.Report.Currency == "" {
		c.Report.Currency = "₹"
	}
	if c.Sweep.Concurrency <= 0 {
		c.Sweep.Concurrency = 4
	}
}
