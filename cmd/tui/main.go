package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"crossbot-go/internal/config"
	"crossbot-go/internal/strategy"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== Crossbot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit strategy windows")
		fmt.Println("3) Edit bankroll")
		fmt.Println("4) Edit data source")
		fmt.Println("5) Save config")
		fmt.Println("6) Run backtest")
		fmt.Println("7) Run window sweep")
		fmt.Println("8) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editStrategy(reader, cfg)
		case "3":
			cfg.Backtest.InitialBalance = promptFloat(reader, "Initial balance", cfg.Backtest.InitialBalance)
		case "4":
			editData(reader, cfg)
		case "5":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "config not saved: %v\n", err)
				continue
			}
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchBacktest()
		case "7":
			launchBacktest("-sweep")
		case "8":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Symbol: %s via %s (period %s, interval %s)\n", cfg.Data.Symbol, cfg.Data.Provider, cfg.Data.Period, cfg.Data.Interval)
	if cfg.Data.CSVPath != "" {
		fmt.Printf("CSV file: %s\n", cfg.Data.CSVPath)
	}
	fmt.Printf("Strategy: %s %d/%d\n", cfg.Strategy.Mode, cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	fmt.Printf("Initial balance: %s%.2f\n", cfg.Report.Currency, cfg.Backtest.InitialBalance)
	fmt.Printf("Trade log: %s | chart: %s\n", orNone(cfg.Backtest.TradesPath), orNone(cfg.Report.ChartPath))
	fmt.Printf("Sweep: short %v x long %v (concurrency %d)\n", cfg.Sweep.ShortWindows, cfg.Sweep.LongWindows, cfg.Sweep.Concurrency)
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Problems: %v\n", err)
	}
}

func editStrategy(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategy ---")
	mode := promptString(reader, "Mode (sma_crossover|ema_crossover)", cfg.Strategy.Mode)
	if _, err := strategy.Build(mode, strategy.Params{ShortWindow: 1, LongWindow: 2}); err != nil {
		fmt.Printf("%v, keeping %s\n", err, cfg.Strategy.Mode)
	} else {
		cfg.Strategy.Mode = mode
	}
	cfg.Strategy.ShortWindow = promptInt(reader, "Short window", cfg.Strategy.ShortWindow)
	cfg.Strategy.LongWindow = promptInt(reader, "Long window", cfg.Strategy.LongWindow)
	if cfg.Strategy.ShortWindow >= cfg.Strategy.LongWindow {
		fmt.Println("warning: short window must be smaller than long window before saving")
	}
}

func editData(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Data Source ---")
	cfg.Data.Symbol = promptString(reader, "Symbol", cfg.Data.Symbol)
	cfg.Data.Provider = strings.ToLower(promptString(reader, "Provider (stub|csv|yahoo|binance)", cfg.Data.Provider))
	cfg.Data.Period = promptString(reader, "Period", cfg.Data.Period)
	if cfg.Data.Provider == "csv" {
		cfg.Data.CSVPath = promptString(reader, "CSV path", cfg.Data.CSVPath)
	}
}

func launchBacktest(args ...string) {
	fmt.Println("Running backtest...")
	cmdArgs := append([]string{"run", "./cmd/backtest", "-config", locateConfig()}, args...)
	cmd := exec.CommandContext(context.Background(), "go", cmdArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
	}
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	fmt.Printf("%s [%d]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.Atoi(line)
	if err != nil || val <= 0 {
		fmt.Printf("invalid window, keeping %d\n", current)
		return current
	}
	return val
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil || val <= 0 {
		fmt.Printf("invalid amount, keeping %.2f\n", current)
		return current
	}
	return val
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if p := os.Getenv("CROSSBOT_CONFIG"); p != "" {
		return filepath.Clean(p)
	}
	return filepath.Clean(defaultConfigPath)
}
