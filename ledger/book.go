package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PositionBook maps a symbol to its open position. A symbol is present only
// while its quantity is strictly positive.
type PositionBook map[string]*Position

// upsertOnBuy adds quantity at price, recomputing the weighted-average cost.
func (b PositionBook) upsertOnBuy(symbol string, quantity, price decimal.Decimal, now time.Time) {
	pos, ok := b[symbol]
	if !ok {
		b[symbol] = &Position{
			Symbol:      symbol,
			Quantity:    quantity,
			AverageCost: price,
			OpenedAt:    now,
		}
		return
	}

	newQty := pos.Quantity.Add(quantity)
	cost := pos.Quantity.Mul(pos.AverageCost).Add(quantity.Mul(price))
	pos.AverageCost = cost.Div(newQty)
	pos.Quantity = newQty
}

// reduceOnSell removes quantity from symbol and deletes the entry when it
// reaches zero. The book is untouched on error.
func (b PositionBook) reduceOnSell(symbol string, quantity decimal.Decimal) error {
	held := decimal.Zero
	pos, ok := b[symbol]
	if ok {
		held = pos.Quantity
	}
	if !ok || held.LessThan(quantity) {
		return fmt.Errorf("%w: sell %s %s, holding %s", ErrInsufficientHoldings, quantity, symbol, held)
	}

	pos.Quantity = pos.Quantity.Sub(quantity)
	if pos.Quantity.IsZero() {
		delete(b, symbol)
	}
	return nil
}

// Symbols returns the held symbols in sorted order.
func (b PositionBook) Symbols() []string {
	out := make([]string, 0, len(b))
	for sym := range b {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}
