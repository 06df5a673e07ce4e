// Package exchange hosts the data providers that turn remote or local quotes into clean bar series.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crossbot-go/internal/signal"
)

const (
	// ProviderStub emits a deterministic synthetic series (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderCSV reads bars from a local CSV export.
	ProviderCSV = "csv"
	// ProviderYahoo pulls daily history from the Yahoo Finance chart API.
	ProviderYahoo = "yahoo"
	// ProviderBinance pulls spot klines from the Binance REST API.
	ProviderBinance = "binance"
)

// ErrNoData is returned when a provider yields no usable bars.
var ErrNoData = errors.New("no data")

// Request describes one history fetch. Start/End override Period when set.
type Request struct {
	Symbol   string
	Interval string
	Period   string
	Start    time.Time
	End      time.Time
}

// Source is implemented by every history provider.
type Source interface {
	Fetch(ctx context.Context, req Request) (signal.Series, error)
	Name() string
}

// Feed is a pluggable history source backed by one provider.
type Feed struct {
	provider string
	log      zerolog.Logger
	client   *http.Client
	baseURL  string
	csvPath  string
	stubBars int
	now      func() time.Time
}

// Option configures Feed construction parameters.
type Option func(*Feed)

const (
	defaultTimeout  = 15 * time.Second
	defaultStubBars = 300
)

// WithBaseURL overrides the provider endpoint (used by tests and mirrors).
func WithBaseURL(baseURL string) Option {
	return func(f *Feed) {
		if baseURL != "" {
			f.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient injects the client used by network providers.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Feed) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithCSVPath points the CSV provider at a file.
func WithCSVPath(path string) Option {
	return func(f *Feed) { f.csvPath = path }
}

// WithStubBars sets the length of the synthetic series.
func WithStubBars(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.stubBars = n
		}
	}
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider: strings.ToLower(strings.TrimSpace(provider)),
		log:      log,
		client:   &http.Client{Timeout: defaultTimeout},
		stubBars: defaultStubBars,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.baseURL == "" {
		switch f.provider {
		case ProviderYahoo:
			f.baseURL = defaultYahooBaseURL
		case ProviderBinance:
			f.baseURL = defaultBinanceBaseURL
		}
	}
	return f
}

// Name returns the provider identifier.
func (f *Feed) Name() string { return f.provider }

// Fetch loads, cleans and returns the requested history.
func (f *Feed) Fetch(ctx context.Context, req Request) (signal.Series, error) {
	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Symbol == "" {
		return signal.Series{}, errors.New("symbol is required")
	}
	if req.Interval == "" {
		req.Interval = "1d"
	}

	var (
		bars []signal.Bar
		err  error
	)
	switch f.provider {
	case ProviderStub:
		bars = f.stubSeries()
	case ProviderCSV:
		bars, err = f.fetchCSV()
	case ProviderYahoo:
		bars, err = f.fetchYahoo(ctx, req)
	case ProviderBinance:
		bars, err = f.fetchBinance(ctx, req)
	default:
		return signal.Series{}, fmt.Errorf("unknown provider %q", f.provider)
	}
	if err != nil {
		return signal.Series{}, fmt.Errorf("%s fetch %s: %w", f.provider, req.Symbol, err)
	}

	start, end := f.window(req)
	raw := len(bars)
	bars = normalize(bars, start, end)
	if len(bars) == 0 {
		return signal.Series{}, fmt.Errorf("%s fetch %s: %w", f.provider, req.Symbol, ErrNoData)
	}
	if dropped := raw - len(bars); dropped > 0 {
		f.log.Warn().Str("sym", req.Symbol).Int("dropped", dropped).Msg("discarded unusable or out-of-range bars")
	}
	f.log.Info().
		Str("provider", f.provider).
		Str("sym", req.Symbol).
		Int("bars", len(bars)).
		Time("from", bars[0].Time).
		Time("to", bars[len(bars)-1].Time).
		Msg("history loaded")
	return signal.Series{Symbol: req.Symbol, Bars: bars}, nil
}

// window resolves the time filter applied after fetching. Zero values disable a bound.
func (f *Feed) window(req Request) (time.Time, time.Time) {
	if !req.Start.IsZero() || !req.End.IsZero() {
		return req.Start, req.End
	}
	// Yahoo applies the range server-side; CSV and stub files are taken as-is.
	if f.provider != ProviderBinance {
		return time.Time{}, time.Time{}
	}
	start, err := periodStart(req.Period, f.now())
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return start, time.Time{}
}

// normalize sorts bars, drops non-positive or non-finite closes, keeps the last bar per timestamp
// and applies the optional [start, end] bounds.
func normalize(bars []signal.Bar, start, end time.Time) []signal.Bar {
	clean := make([]signal.Bar, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 || b.Time.IsZero() {
			continue
		}
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		clean = append(clean, b)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	out := clean[:0]
	for _, b := range clean {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// periodStart converts a Yahoo-style range (5d, 6mo, 2y, ytd, max) into a start time.
func periodStart(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "", "max":
		return time.Time{}, nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	units := []struct {
		suffix string
		apply  func(n int) time.Time
	}{
		{"mo", func(n int) time.Time { return now.AddDate(0, -n, 0) }},
		{"wk", func(n int) time.Time { return now.AddDate(0, 0, -7*n) }},
		{"d", func(n int) time.Time { return now.AddDate(0, 0, -n) }},
		{"y", func(n int) time.Time { return now.AddDate(-n, 0, 0) }},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid period %q", period)
		}
		return u.apply(n), nil
	}
	return time.Time{}, fmt.Errorf("invalid period %q", period)
}

// stubSeries is a slow sine wave over a gentle drift, so crossovers occur regularly.
func (f *Feed) stubSeries() []signal.Bar {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]signal.Bar, f.stubBars)
	for i := range bars {
		px := 100 + 20*math.Sin(float64(i)/15) + 0.05*float64(i)
		bars[i] = signal.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   px - 0.5,
			High:   px + 1,
			Low:    px - 1,
			Close:  px,
			Volume: 1000 + float64(i%10)*100,
		}
	}
	return bars
}
