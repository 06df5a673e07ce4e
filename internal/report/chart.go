package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"crossbot-go/internal/backtest"
	"crossbot-go/internal/signal"
)

const (
	colorClose  = "#94a3b8"
	colorShort  = "#3b82f6"
	colorLong   = "#f59e0b"
	colorBuy    = "#16a34a"
	colorSell   = "#dc2626"
	colorSignal = "#7c3aed"

	chartWidthPx   = 1400
	priceHeightPx  = 560
	signalHeightPx = 240
)

// RenderChart writes an HTML page with the price panel (close, both averages, buy/sell markers)
// and the signal panel below it.
func RenderChart(w io.Writer, rep backtest.Report) error {
	if w == nil {
		return errors.New("nil writer")
	}
	points := rep.Frame.Points
	if len(points) == 0 {
		return fmt.Errorf("no points to chart for %s", rep.Symbol)
	}
	xAxis := buildXAxis(points)

	price := buildPriceChart(rep, xAxis)
	sig := buildSignalChart(rep, xAxis)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s %s", strings.ToUpper(rep.Symbol), rep.Strategy)
	page.AddCharts(price, sig)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func buildXAxis(points []signal.Point) []string {
	x := make([]string, len(points))
	for i, p := range points {
		x[i] = p.Time.UTC().Format("2006-01-02")
	}
	return x
}

func buildPriceChart(rep backtest.Report, xAxis []string) *charts.Line {
	points := rep.Frame.Points
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", priceHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s price with %s", strings.ToUpper(rep.Symbol), rep.Strategy),
			Subtitle: fmt.Sprintf("short %d / long %d", rep.Frame.ShortWindow, rep.Frame.LongWindow),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	closes := make([]float64, len(points))
	shorts := make([]float64, len(points))
	longs := make([]float64, len(points))
	for i, p := range points {
		closes[i], shorts[i], longs[i] = p.Close, p.Short, p.Long
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Close", toLineData(closes), charts.WithLineStyleOpts(opts.LineStyle{Color: colorClose, Width: 1}))
	line.AddSeries(fmt.Sprintf("Short (%d)", rep.Frame.ShortWindow), toLineData(shorts), charts.WithLineStyleOpts(opts.LineStyle{Color: colorShort, Width: 2}))
	line.AddSeries(fmt.Sprintf("Long (%d)", rep.Frame.LongWindow), toLineData(longs), charts.WithLineStyleOpts(opts.LineStyle{Color: colorLong, Width: 2}))

	markers := charts.NewScatter()
	markers.SetXAxis(xAxis)
	markers.AddSeries("Buy Signal", markerData(points, 1, "triangle"), charts.WithItemStyleOpts(opts.ItemStyle{Color: colorBuy}))
	markers.AddSeries("Sell Signal", markerData(points, -1, "pin"), charts.WithItemStyleOpts(opts.ItemStyle{Color: colorSell}))
	line.Overlap(markers)
	return line
}

func buildSignalChart(rep backtest.Report, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", signalHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: "Trading signals (1 = long, 0 = flat)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	data := make([]opts.LineData, len(rep.Frame.Points))
	for i, p := range rep.Frame.Points {
		data[i] = opts.LineData{Value: int(p.Signal)}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Signal", data, charts.WithLineStyleOpts(opts.LineStyle{Color: colorSignal, Width: 2}))
	return line
}

// toLineData leaves gaps where the average is still warming up.
func toLineData(series []float64) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, v := range series {
		if math.IsNaN(v) {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: round(v, 4)}
	}
	return out
}

func markerData(points []signal.Point, event int, symbol string) []opts.ScatterData {
	out := make([]opts.ScatterData, len(points))
	for i, p := range points {
		if p.Event != event {
			out[i] = opts.ScatterData{Value: nil}
			continue
		}
		out[i] = opts.ScatterData{Value: round(p.Close, 4), Symbol: symbol, SymbolSize: 14}
	}
	return out
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
