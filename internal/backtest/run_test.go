package backtest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossbot-go/internal/signal"
	"crossbot-go/internal/strategy"
)

func TestNewRunnerValidates(t *testing.T) {
	_, err := NewRunner(RunnerConfig{InitialBalance: 100})
	assert.Error(t, err)

	strat, err := strategy.NewCrossover(1, 2)
	require.NoError(t, err)
	_, err = NewRunner(RunnerConfig{Strategy: strat, InitialBalance: 0})
	assert.ErrorIs(t, err, ErrInvalidBalance)
}

func TestRunnerProducesReport(t *testing.T) {
	var buf bytes.Buffer
	strat, err := strategy.NewCrossover(1, 2)
	require.NoError(t, err)
	rec := &captureRecorder{}
	runner, err := NewRunner(RunnerConfig{
		Strategy:       strat,
		InitialBalance: 110,
		Logger:         zerolog.New(&buf),
		Recorder:       rec,
	})
	require.NoError(t, err)

	series := makeSeries(10, 5, 20, 20, 20)
	report, err := runner.Run(series)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "SIMTEST", report.Symbol)
	assert.Equal(t, strategy.NameSMACrossover, report.Strategy)
	assert.Len(t, report.Frame.Points, 5)
	assert.Len(t, report.Result.Trades, 2)
	assert.Equal(t, report.Result.Trades, rec.trades)

	assert.Equal(t, 1, report.Stats.Buys)
	assert.Equal(t, 1, report.Stats.Sells)
	assert.Equal(t, 5, report.Stats.Bars)
	assert.Equal(t, 1, report.Stats.ExposureBars)
	assert.InDelta(t, 0, report.Stats.ReturnPct, 1e-9)
	assert.InDelta(t, 100, report.Stats.BuyHoldPct, 1e-9)
	assert.False(t, report.Stats.Outperformed)

	logs := buf.String()
	assert.True(t, strings.Contains(logs, "backtest finished"), logs)
	assert.True(t, strings.Contains(logs, report.RunID), logs)
	assert.True(t, strings.Contains(logs, "barely covers"), "short series should trigger the data-quality warning")
}

func TestRunnerWrapsGeneratorErrors(t *testing.T) {
	runner, err := NewRunner(RunnerConfig{Strategy: &strategy.Crossover{}, InitialBalance: 100})
	require.NoError(t, err)
	_, err = runner.Run(signal.Series{})
	assert.ErrorIs(t, err, strategy.ErrInvalidWindow)
}

func TestComputeStats(t *testing.T) {
	series := makeSeries(100, 150)
	frame := signal.Frame{Points: []signal.Point{{Signal: signal.Flat}, {Signal: signal.Long}}}
	st := ComputeStats(series, frame, Result{InitialBalance: 1000, FinalBalance: 1600})

	assert.InDelta(t, 600, st.TotalReturn, 1e-9)
	assert.InDelta(t, 60, st.ReturnPct, 1e-9)
	assert.InDelta(t, 50, st.BuyHoldPct, 1e-9)
	assert.True(t, st.Outperformed)
	assert.Equal(t, 1, st.ExposureBars)
}
