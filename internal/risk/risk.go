// Package risk holds position sizing policies.
package risk

import "github.com/shopspring/decimal"

// Sizer decides how many units a buy may take given free cash and the fill price.
type Sizer interface {
	Units(cash, price decimal.Decimal) decimal.Decimal
}

// AllIn spends all free cash on whole units and never sizes below zero.
type AllIn struct{}

// Units returns floor(cash / price), or zero when either side is non-positive.
func (AllIn) Units(cash, price decimal.Decimal) decimal.Decimal {
	if cash.Sign() <= 0 || price.Sign() <= 0 {
		return decimal.Zero
	}
	q, _ := cash.QuoRem(price, 0)
	return q
}
