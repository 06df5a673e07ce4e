// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data describes where the price series comes from.
type Data struct {
	Provider string `yaml:"provider"` // stub|csv|yahoo|binance
	Symbol   string `yaml:"symbol"`
	Period   string `yaml:"period"`   // e.g. 2y, 6mo, max
	Interval string `yaml:"interval"` // 1d
	CSVPath  string `yaml:"csv_path"`
	BaseURL  string `yaml:"base_url"`
	TimeoutS int    `yaml:"timeout_secs"`
}

// Strategy specifies which crossover is active along with its windows.
type Strategy struct {
	Mode        string `yaml:"mode"`
	ShortWindow int    `yaml:"short_window"`
	LongWindow  int    `yaml:"long_window"`
}

// Backtest captures the account settings of a simulation.
type Backtest struct {
	InitialBalance float64 `yaml:"initial_balance"`
	TradesPath     string  `yaml:"trades_path"`
}

// Report configures the human-facing outputs.
type Report struct {
	ChartPath    string `yaml:"chart_path"`
	RecentTrades int    `yaml:"recent_trades"`
	Currency     string `yaml:"currency"`
}

// Sweep configures the parameter grid explored by the sweep command.
type Sweep struct {
	ShortWindows []int `yaml:"short_windows"`
	LongWindows  []int `yaml:"long_windows"`
	Concurrency  int   `yaml:"concurrency"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Data     Data     `yaml:"data"`
	Strategy Strategy `yaml:"strategy"`
	Backtest Backtest `yaml:"backtest"`
	Report   Report   `yaml:"report"`
	Sweep    Sweep    `yaml:"sweep"`
}

// Load reads a YAML file from disk, hydrates a Config struct and fills defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.ApplyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
