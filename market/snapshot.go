package market

import "github.com/shopspring/decimal"

// Snapshot maps a normalized symbol to its price. Build it with Set or a
// PriceStore so keys are normalized; a plain map literal must use
// normalized keys itself.
type Snapshot map[string]decimal.Decimal

// Set records price for symbol.
func (s Snapshot) Set(symbol string, price decimal.Decimal) {
	s[NormalizeSymbol(symbol)] = price
}

// Price returns the price for symbol, if quoted.
func (s Snapshot) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := s[NormalizeSymbol(symbol)]
	return p, ok
}
