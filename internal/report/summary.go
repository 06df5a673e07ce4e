// Package report renders backtest results for people: a text summary and an HTML chart.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"crossbot-go/internal/backtest"
)

const (
	defaultRecentTrades = 5
	ruleWidth           = 50
)

// Options tune the summary output.
type Options struct {
	Currency     string
	RecentTrades int
}

func (o Options) withDefaults() Options {
	if o.RecentTrades <= 0 {
		o.RecentTrades = defaultRecentTrades
	}
	return o
}

// WriteSummary prints balances, trade counts, the most recent trades and the buy & hold comparison.
func WriteSummary(w io.Writer, rep backtest.Report, o Options) error {
	if w == nil {
		return errors.New("nil writer")
	}
	o = o.withDefaults()
	p := message.NewPrinter(language.English)
	cur := o.Currency
	res, st := rep.Result, rep.Stats

	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(&b, "%s\nBACKTESTING RESULTS  %s  (%s %d/%d)\n%s\n",
		rule, rep.Symbol, rep.Strategy, rep.Frame.ShortWindow, rep.Frame.LongWindow, rule)
	b.WriteString(p.Sprintf("Initial Balance: %s%.2f\n", cur, res.InitialBalance))
	b.WriteString(p.Sprintf("Final Balance: %s%.2f\n", cur, res.FinalBalance))
	b.WriteString(p.Sprintf("Total Return: %s%.2f\n", cur, st.TotalReturn))
	fmt.Fprintf(&b, "Return Percentage: %.2f%%\n", st.ReturnPct)
	if res.Liquidated {
		b.WriteString(p.Sprintf("Open position closed at last bar: %s%.2f\n", cur, res.LiquidationValue))
	}

	fmt.Fprintf(&b, "\nTotal Trades: %d\nBuy Orders: %d\nSell Orders: %d\n", len(res.Trades), st.Buys, st.Sells)

	b.WriteString("\nRecent Trades:\n")
	trades := res.Trades
	if len(trades) > o.RecentTrades {
		trades = trades[len(trades)-o.RecentTrades:]
	}
	if len(trades) == 0 {
		b.WriteString("  none\n")
	}
	for _, tr := range trades {
		b.WriteString(p.Sprintf("%s: %.0f shares at %s%.2f on %s\n",
			tr.Action, tr.Qty, cur, tr.Price, tr.Time.Format("2006-01-02")))
	}

	fmt.Fprintf(&b, "\nSTRATEGY COMPARISON:\nBuy & Hold Return: %.2f%%\nStrategy Return: %.2f%%\n", st.BuyHoldPct, st.ReturnPct)
	if st.Outperformed {
		b.WriteString("Strategy outperformed Buy & Hold.\n")
	} else {
		b.WriteString("Buy & Hold would have been better.\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
