package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossbot-go/internal/backtest"
	"crossbot-go/internal/signal"
	"crossbot-go/internal/strategy"
)

func runFixture(t *testing.T, balance float64, closes ...float64) backtest.Report {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := signal.Series{Symbol: "TEST.NS"}
	for i, c := range closes {
		series.Bars = append(series.Bars, signal.Bar{Time: start.AddDate(0, 0, i), Close: c})
	}
	strat, err := strategy.NewCrossover(1, 2)
	require.NoError(t, err)
	runner, err := backtest.NewRunner(backtest.RunnerConfig{Strategy: strat, InitialBalance: balance, Logger: zerolog.Nop()})
	require.NoError(t, err)
	rep, err := runner.Run(series)
	require.NoError(t, err)
	return rep
}

func TestWriteSummary(t *testing.T) {
	rep := runFixture(t, 100000, 10, 5, 20, 20, 20, 8, 30)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, rep, Options{Currency: "$", RecentTrades: 2}))
	out := buf.String()

	assert.Contains(t, out, "BACKTESTING RESULTS")
	assert.Contains(t, out, "Initial Balance: $100,000.00")
	assert.Contains(t, out, "Final Balance: $100,000.00")
	assert.Contains(t, out, "Return Percentage: 0.00%")
	assert.Contains(t, out, "Total Trades: 3")
	assert.Contains(t, out, "Buy Orders: 2")
	assert.Contains(t, out, "Sell Orders: 1")
	assert.Contains(t, out, "Open position closed at last bar: $99,990.00")
	// Only the last two trades are listed.
	assert.NotContains(t, out, "Buy: 5,000 shares")
	assert.Contains(t, out, "Sell: 5,000 shares at $20.00 on 2024-01-04")
	assert.Contains(t, out, "Buy: 3,333 shares at $30.00 on 2024-01-07")
	assert.Contains(t, out, "Buy & Hold Return: 200.00%")
	assert.Contains(t, out, "Buy & Hold would have been better.")
}

func TestWriteSummaryVerdictAndEmptyLedger(t *testing.T) {
	rep := runFixture(t, 100, 10, 10, 10)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, rep, Options{}))
	out := buf.String()
	assert.Contains(t, out, "Total Trades: 0")
	assert.Contains(t, out, "none")
	// Equal returns do not count as outperforming.
	assert.Contains(t, out, "Buy & Hold would have been better.")

	rep.Stats.Outperformed = true
	buf.Reset()
	require.NoError(t, WriteSummary(&buf, rep, Options{}))
	assert.Contains(t, buf.String(), "Strategy outperformed Buy & Hold.")

	assert.Error(t, WriteSummary(nil, rep, Options{}))
}

func TestRenderChart(t *testing.T) {
	rep := runFixture(t, 100000, 10, 5, 20, 20, 20, 8, 30)

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, rep))
	html := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>") || strings.Contains(html, "<html"))
	for _, want := range []string{"Close", "Short (1)", "Long (2)", "Buy Signal", "Sell Signal", "Signal", "2024-01-07"} {
		assert.Contains(t, html, want)
	}
}

func TestRenderChartRejectsEmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderChart(&buf, backtest.Report{Symbol: "X"}))
	assert.Error(t, RenderChart(nil, backtest.Report{}))
}

func TestToLineDataLeavesGaps(t *testing.T) {
	data := toLineData([]float64{math.NaN(), 1.23456, 2})
	require.Len(t, data, 3)
	assert.Nil(t, data[0].Value)
	assert.Equal(t, 1.2346, data[1].Value)
	assert.Equal(t, 2.0, data[2].Value)
}
