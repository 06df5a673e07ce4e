package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"crossbot-go/internal/backtest"
	"crossbot-go/internal/config"
	"crossbot-go/internal/exchange"
	"crossbot-go/internal/metrics"
	"crossbot-go/internal/paper"
	"crossbot-go/internal/report"
	"crossbot-go/internal/signal"
	"crossbot-go/internal/strategy"
	"crossbot-go/internal/sweep"
	"crossbot-go/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the YAML config")
	envFile := flag.String("env", ".env", "optional .env file with CROSSBOT_* overrides")
	symbol := flag.String("symbol", "", "override data.symbol")
	provider := flag.String("provider", "", "override data.provider (stub|csv|yahoo|binance)")
	runSweep := flag.Bool("sweep", false, "run the window grid from the sweep section instead of a single backtest")
	noChart := flag.Bool("no-chart", false, "skip writing the HTML chart")
	flag.Parse()

	boot := util.NewConsoleLogger("info", os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		boot.Fatal().Err(err).Msg("apply env overrides")
	}
	if *symbol != "" {
		cfg.Data.Symbol = *symbol
	}
	if *provider != "" {
		cfg.Data.Provider = *provider
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("invalid config")
	}

	log := util.NewConsoleLogger(cfg.App.LogLevel, os.Stderr).With().Str("app", cfg.App.Name).Logger()

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	feed := exchange.NewFeed(cfg.Data.Provider, log,
		exchange.WithBaseURL(cfg.Data.BaseURL),
		exchange.WithCSVPath(cfg.Data.CSVPath),
		exchange.WithTimeout(time.Duration(cfg.Data.TimeoutS)*time.Second),
	)
	series, err := feed.Fetch(ctx, exchange.Request{
		Symbol:   cfg.Data.Symbol,
		Interval: cfg.Data.Interval,
		Period:   cfg.Data.Period,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("fetch history")
	}

	if *runSweep {
		if err := sweepWindows(ctx, cfg, series, log); err != nil {
			log.Fatal().Err(err).Msg("sweep")
		}
		return
	}
	if err := backtestOnce(cfg, series, log, !*noChart); err != nil {
		log.Fatal().Err(err).Msg("backtest")
	}
}

func backtestOnce(cfg *config.Config, series signal.Series, log zerolog.Logger, chart bool) error {
	strat, err := strategy.Build(cfg.Strategy.Mode, strategy.Params{
		ShortWindow: cfg.Strategy.ShortWindow,
		LongWindow:  cfg.Strategy.LongWindow,
	})
	if err != nil {
		return err
	}

	runCfg := backtest.RunnerConfig{
		Strategy:       strat,
		InitialBalance: cfg.Backtest.InitialBalance,
		Logger:         log,
	}
	if cfg.Backtest.TradesPath != "" {
		rec, err := paper.NewJSONLRecorder(cfg.Backtest.TradesPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("close trade log")
			}
		}()
		runCfg.Recorder = rec
	}

	runner, err := backtest.NewRunner(runCfg)
	if err != nil {
		return err
	}
	rep, err := runner.Run(series)
	if err != nil {
		return err
	}

	if err := report.WriteSummary(os.Stdout, rep, report.Options{
		Currency:     cfg.Report.Currency,
		RecentTrades: cfg.Report.RecentTrades,
	}); err != nil {
		return err
	}

	if !chart || cfg.Report.ChartPath == "" {
		return nil
	}
	if err := writeChart(cfg.Report.ChartPath, rep); err != nil {
		return err
	}
	log.Info().Str("path", cfg.Report.ChartPath).Msg("chart written")
	return nil
}

func writeChart(path string, rep backtest.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := report.RenderChart(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func sweepWindows(ctx context.Context, cfg *config.Config, series signal.Series, log zerolog.Logger) error {
	results, err := sweep.Run(ctx, series, sweep.Config{
		Mode:           cfg.Strategy.Mode,
		ShortWindows:   cfg.Sweep.ShortWindows,
		LongWindows:    cfg.Sweep.LongWindows,
		InitialBalance: cfg.Backtest.InitialBalance,
		Concurrency:    cfg.Sweep.Concurrency,
	}, log)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "short\tlong\ttrades\tfinal\treturn %\tbuy&hold %\t")
	for _, r := range sweep.Ranked(results) {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t\n", r.ShortWindow, r.LongWindow, r.Trades, r.FinalBalance, r.ReturnPct, r.BuyHoldPct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if best, ok := sweep.Best(results); ok {
		log.Info().Int("short", best.ShortWindow).Int("long", best.LongWindow).Float64("return_pct", best.ReturnPct).Msg("best window pair")
	}
	return nil
}
