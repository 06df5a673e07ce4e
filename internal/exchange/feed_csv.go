package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"crossbot-go/internal/signal"
)

var csvDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
	"01/02/2006",
	"02-Jan-2006",
}

func (f *Feed) fetchCSV() ([]signal.Bar, error) {
	if f.csvPath == "" {
		return nil, errors.New("csv path not configured")
	}
	file, err := os.Open(f.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return readCSV(file)
}

// readCSV parses a header-driven OHLCV export. A UTF-8 BOM is stripped; only date and close
// columns are mandatory.
func readCSV(r io.Reader) ([]signal.Bar, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	dateCol, ok := firstColumn(cols, "date", "datetime", "timestamp", "time")
	if !ok {
		return nil, errors.New("csv is missing a date column")
	}
	closeCol, ok := firstColumn(cols, "close", "adj_close")
	if !ok {
		return nil, errors.New("csv is missing a close column")
	}
	openCol, _ := firstColumn(cols, "open")
	highCol, _ := firstColumn(cols, "high")
	lowCol, _ := firstColumn(cols, "low")
	volCol, _ := firstColumn(cols, "volume")

	var bars []signal.Bar
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := parseCSVTime(field(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, signal.Bar{
			Time:   ts,
			Open:   parseCSVFloat(field(rec, openCol)),
			High:   parseCSVFloat(field(rec, highCol)),
			Low:    parseCSVFloat(field(rec, lowCol)),
			Close:  parseCSVFloat(field(rec, closeCol)),
			Volume: parseCSVFloat(field(rec, volCol)),
		})
	}
	return bars, nil
}

func firstColumn(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseCSVTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		// Values past 1e11 are epoch milliseconds.
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// parseCSVFloat maps blanks and placeholders like "null" to NaN.
func parseCSVFloat(v string) float64 {
	v = strings.ReplaceAll(v, ",", "")
	switch strings.ToLower(v) {
	case "", "null", "nan", "-":
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
