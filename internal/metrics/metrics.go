package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_total", Help: "Count of bars replayed by the simulator"},
		[]string{"symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Signal-driven trades executed"},
		[]string{"symbol", "action"},
	)
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_runs_total", Help: "Backtest runs by outcome"},
		[]string{"strategy", "status"},
	)
	FinalBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "backtest_final_balance", Help: "Final balance of the most recent run"},
		[]string{"symbol", "strategy"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, TradesTotal, RunsTotal, FinalBalance)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
