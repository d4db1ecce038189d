// Package market holds caller-supplied prices: parsed quotes, immutable
// price snapshots, and a small concurrent cache the caller may use to
// build them.
package market

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrBadQuote = errors.New("bad quote")

// NormalizeSymbol trims and upper-cases a symbol so "gold " and "GOLD"
// address the same instrument.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Quote is the price of one symbol at a point in time.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time
}

// ParseQuote parses "SYMBOL=PRICE", e.g. "GOLD=2050.25" or "USD/ZMW=25.5".
func ParseQuote(s string) (Quote, error) {
	sym, px, ok := strings.Cut(s, "=")
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q is not SYMBOL=PRICE", ErrBadQuote, s)
	}
	sym = NormalizeSymbol(sym)
	if sym == "" {
		return Quote{}, fmt.Errorf("%w: %q has no symbol", ErrBadQuote, s)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(px))
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %q: %v", ErrBadQuote, s, err)
	}
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %q price must be positive", ErrBadQuote, s)
	}
	return Quote{Symbol: sym, Price: price}, nil
}
