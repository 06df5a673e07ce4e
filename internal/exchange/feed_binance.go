package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"crossbot-go/internal/signal"
)

const (
	defaultBinanceBaseURL = "https://api.binance.com"
	binancePageLimit      = 1000
	binanceMaxPages       = 50
)

// fetchBinance pages through /api/v3/klines from the requested start until the exchange runs dry.
func (f *Feed) fetchBinance(ctx context.Context, req Request) ([]signal.Bar, error) {
	start := req.Start
	if start.IsZero() {
		s, err := periodStart(req.Period, f.now())
		if err != nil {
			return nil, err
		}
		start = s
	}
	symbol := strings.ToUpper(req.Symbol)

	var bars []signal.Bar
	for page := 0; page < binanceMaxPages; page++ {
		batch, err := f.binancePage(ctx, symbol, req.Interval, start, req.End)
		if err != nil {
			return nil, err
		}
		bars = append(bars, batch...)
		if len(batch) < binancePageLimit {
			break
		}
		start = batch[len(batch)-1].Time.Add(time.Millisecond)
	}
	return bars, nil
}

func (f *Feed) binancePage(ctx context.Context, symbol, interval string, start, end time.Time) ([]signal.Bar, error) {
	u, err := url.Parse(f.baseURL + "/api/v3/klines")
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(binancePageLimit))
	if !start.IsZero() {
		q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if !end.IsZero() {
		q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance status %d: %s", resp.StatusCode, gjson.GetBytes(body, "msg").String())
	}
	return parseBinanceKlines(body)
}

// parseBinanceKlines reads rows of [openTime, open, high, low, close, volume, closeTime, ...].
func parseBinanceKlines(body []byte) ([]signal.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid binance payload")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("unexpected binance payload: %s", parsed.Get("msg").String())
	}
	var bars []signal.Bar
	parsed.ForEach(func(_, row gjson.Result) bool {
		cols := row.Array()
		if len(cols) < 6 {
			return true
		}
		bars = append(bars, signal.Bar{
			Time:   time.UnixMilli(cols[0].Int()).UTC(),
			Open:   cols[1].Float(),
			High:   cols[2].Float(),
			Low:    cols[3].Float(),
			Close:  cols[4].Float(),
			Volume: cols[5].Float(),
		})
		return true
	})
	return bars, nil
}
