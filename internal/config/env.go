package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvSymbol         = "CROSSBOT_SYMBOL"
	EnvProvider       = "CROSSBOT_PROVIDER"
	EnvCSVPath        = "CROSSBOT_CSV_PATH"
	EnvShortWindow    = "CROSSBOT_SHORT_WINDOW"
	EnvLongWindow     = "CROSSBOT_LONG_WINDOW"
	EnvInitialBalance = "CROSSBOT_INITIAL_BALANCE"
	EnvLogLevel       = "CROSSBOT_LOG_LEVEL"
)

// ApplyEnv overlays environment variables (and a .env file when present) onto the config.
func (c *Config) ApplyEnv(envFiles ...string) error {
	_ = godotenv.Load(envFiles...) // best-effort

	if v := getEnv(EnvSymbol); v != "" {
		c.Data.Symbol = v
	}
	if v := getEnv(EnvProvider); v != "" {
		c.Data.Provider = strings.ToLower(v)
	}
	if v := getEnv(EnvCSVPath); v != "" {
		c.Data.CSVPath = v
	}
	if v := getEnv(EnvLogLevel); v != "" {
		c.App.LogLevel = v
	}
	if v := getEnv(EnvShortWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvShortWindow, err)
		}
		c.Strategy.ShortWindow = n
	}
	if v := getEnv(EnvLongWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvLongWindow, err)
		}
		c.Strategy.LongWindow = n
	}
	if v := getEnv(EnvInitialBalance); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvInitialBalance, err)
		}
		c.Backtest.InitialBalance = f
	}
	return nil
}

func getEnv(k string) string {
	return strings.TrimSpace(os.Getenv(k))
}
