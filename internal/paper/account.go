package paper

import (
	"errors"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"crossbot-go/internal/execution"
	"crossbot-go/internal/risk"
	"crossbot-go/internal/signal"
)

// TradeRecorder captures executed trades for later inspection.
type TradeRecorder interface {
	Record(execution.Trade)
}

var errNonPositivePrice = errors.New("price must be positive and finite")

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0)
}

// Account tracks virtual cash and a single all-in position.
// It is either flat (units == 0) or long (units > 0); there is no intermediate sizing.
type Account struct {
	mu           sync.Mutex
	startingCash decimal.Decimal
	cash         decimal.Decimal
	units        decimal.Decimal
	avgCost      decimal.Decimal
	realizedPnL  decimal.Decimal
	sizer        risk.Sizer
}

// Snapshot represents a thread-safe view of the account state marked at the supplied price.
type Snapshot struct {
	State       signal.Position
	Cash        float64
	Units       float64
	AvgCost     float64
	RealizedPnL float64
	Equity      float64
}

// NewAccount constructs a flat account funded with startingCash. A nil sizer means all-in.
func NewAccount(startingCash float64, sizer risk.Sizer) *Account {
	if sizer == nil {
		sizer = risk.AllIn{}
	}
	cash := decimal.NewFromFloat(startingCash)
	return &Account{
		startingCash: cash,
		cash:         cash,
		sizer:        sizer,
	}
}

// StartingCash returns the initial bankroll.
func (a *Account) StartingCash() float64 { return a.startingCash.InexactFloat64() }

// State reports whether the account is flat or long.
func (a *Account) State() signal.Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state()
}

func (a *Account) state() signal.Position {
	if a.units.Sign() > 0 {
		return signal.Long
	}
	return signal.Flat
}

// BuyAll spends free cash on as many whole units as the sizer allows.
// It returns the quantity bought; zero means nothing executed (already long or cash below one unit).
func (a *Account) BuyAll(price float64) (float64, error) {
	if !validPrice(price) {
		return 0, errNonPositivePrice
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state() == signal.Long {
		return 0, nil
	}
	px := decimal.NewFromFloat(price)
	qty := a.sizer.Units(a.cash, px)
	if qty.Sign() <= 0 {
		return 0, nil
	}
	cost := qty.Mul(px)
	if cost.GreaterThan(a.cash) {
		return 0, errors.New("insufficient cash for buy")
	}
	a.cash = a.cash.Sub(cost)
	a.units = qty
	a.avgCost = px
	return qty.InexactFloat64(), nil
}

// SellAll liquidates the entire position at price and returns the quantity sold (zero when flat).
func (a *Account) SellAll(price float64) (float64, error) {
	if !validPrice(price) {
		return 0, errNonPositivePrice
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state() == signal.Flat {
		return 0, nil
	}
	return a.close(decimal.NewFromFloat(price)).InexactFloat64(), nil
}

// Liquidate closes any open position at price without it counting as a trade.
// It returns the cash value credited; an unusable price leaves the position open and credits nothing.
func (a *Account) Liquidate(price float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state() == signal.Flat || !validPrice(price) {
		return 0
	}
	px := decimal.NewFromFloat(price)
	value := a.units.Mul(px)
	a.close(px)
	return value.InexactFloat64()
}

func (a *Account) close(px decimal.Decimal) decimal.Decimal {
	qty := a.units
	a.realizedPnL = a.realizedPnL.Add(px.Sub(a.avgCost).Mul(qty))
	a.cash = a.cash.Add(qty.Mul(px))
	a.units = decimal.Zero
	a.avgCost = decimal.Zero
	return qty
}

// Snapshot returns a copy of balances marked to market at mark.
func (a *Account) Snapshot(mark float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	equity := a.cash
	if a.units.Sign() > 0 && validPrice(mark) {
		equity = equity.Add(a.units.Mul(decimal.NewFromFloat(mark)))
	}
	return Snapshot{
		State:       a.state(),
		Cash:        a.cash.InexactFloat64(),
		Units:       a.units.InexactFloat64(),
		AvgCost:     a.avgCost.InexactFloat64(),
		RealizedPnL: a.realizedPnL.InexactFloat64(),
		Equity:      equity.InexactFloat64(),
	}
}

// Cash reports free cash.
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash.InexactFloat64()
}

// Units returns the currently held quantity.
func (a *Account) Units() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.units.InexactFloat64()
}

// RealizedPnL returns total closed-trade profit and loss, forced liquidation included.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL.InexactFloat64()
}
