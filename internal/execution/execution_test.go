package execution

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"crossbot-go/internal/metrics"
)

func TestSubmitLogsTrade(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	sub := NewSubmitter(logger, "EXECTEST")
	before := counterValue(t, metrics.TradesTotal.WithLabelValues("EXECTEST", string(Buy)))
	sub.Submit(Trade{Action: Buy, Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Price: 10, Qty: 9})

	out := buf.String()
	if !strings.Contains(out, "EXECTEST") || !strings.Contains(out, "trade executed") {
		t.Fatalf("log does not contain trade: %s", out)
	}
	after := counterValue(t, metrics.TradesTotal.WithLabelValues("EXECTEST", string(Buy)))
	if after != before+1 {
		t.Fatalf("expected trade counter to increase by one, got %.0f -> %.0f", before, after)
	}
}

func TestTradeNotional(t *testing.T) {
	trade := Trade{Action: Sell, Price: 12.5, Qty: 8}
	if trade.Notional() != 100 {
		t.Fatalf("unexpected notional %.2f", trade.Notional())
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}
