package backtest

import (
	"crossbot-go/internal/execution"
	"crossbot-go/internal/signal"
)

// Stats summarises a run against a buy-and-hold benchmark.
type Stats struct {
	Bars         int
	Buys         int
	Sells        int
	TotalReturn  float64
	ReturnPct    float64
	BuyHoldPct   float64
	Outperformed bool
	ExposureBars int // bars spent long
	FirstClose   float64
	LastClose    float64
}

// ComputeStats derives summary figures from a series, its frame and the simulation result.
func ComputeStats(series signal.Series, frame signal.Frame, res Result) Stats {
	st := Stats{Bars: series.Len()}
	for _, tr := range res.Trades {
		switch tr.Action {
		case execution.Buy:
			st.Buys++
		case execution.Sell:
			st.Sells++
		}
	}
	for _, p := range frame.Points {
		if p.Signal == signal.Long {
			st.ExposureBars++
		}
	}
	st.TotalReturn = res.FinalBalance - res.InitialBalance
	if res.InitialBalance > 0 {
		st.ReturnPct = st.TotalReturn / res.InitialBalance * 100
	}
	if len(series.Bars) > 0 {
		st.FirstClose = series.Bars[0].Close
		st.LastClose = series.Bars[len(series.Bars)-1].Close
		if st.FirstClose > 0 {
			st.BuyHoldPct = (st.LastClose/st.FirstClose - 1) * 100
		}
	}
	st.Outperformed = st.ReturnPct > st.BuyHoldPct
	return st
}
