package exchange

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"crossbot-go/internal/signal"
)

const (
	defaultYahooBaseURL = "https://query1.finance.yahoo.com"
	yahooUserAgent      = "Mozilla/5.0 (compatible; crossbot/1.0)"
)

func (f *Feed) fetchYahoo(ctx context.Context, req Request) ([]signal.Bar, error) {
	u, err := url.Parse(f.baseURL + "/v8/finance/chart/" + url.PathEscape(req.Symbol))
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	q.Set("interval", req.Interval)
	q.Set("events", "history")
	if !req.Start.IsZero() {
		end := req.End
		if end.IsZero() {
			end = f.now()
		}
		q.Set("period1", strconv.FormatInt(req.Start.Unix(), 10))
		q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	} else {
		period := req.Period
		if period == "" {
			period = "2y"
		}
		q.Set("range", period)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", yahooUserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo error: %s", desc.String())
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("yahoo status %d", resp.StatusCode)
	}
	return parseYahooChart(body)
}

// parseYahooChart maps the column-oriented chart payload onto bars. Null cells become NaN and are
// dropped later by normalize.
func parseYahooChart(body []byte) ([]signal.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid yahoo payload")
	}
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, ErrNoData
	}
	stamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]signal.Bar, 0, len(stamps))
	for i, ts := range stamps {
		bars = append(bars, signal.Bar{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   cell(opens, i),
			High:   cell(highs, i),
			Low:    cell(lows, i),
			Close:  cell(closes, i),
			Volume: cell(volumes, i),
		})
	}
	return bars, nil
}

func cell(col []gjson.Result, i int) float64 {
	if i >= len(col) || col[i].Type == gjson.Null {
		return math.NaN()
	}
	return col[i].Float()
}
