package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit is the page size used when a filter sets none.
const DefaultHistoryLimit = 20

// HistoryFilter selects a page of transactions. Zero values mean "any".
type HistoryFilter struct {
	Side   Side
	Symbol string
	// Since is inclusive, Until exclusive.
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Page is one page of transactions, newest first.
type Page struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
	HasNext      bool          `json:"has_next"`
	HasPrev      bool          `json:"has_prev"`
}

// normalize upper-cases the symbol and lower-cases the side, so "BUY" and
// "buy" select the same transactions.
func (f HistoryFilter) normalize() HistoryFilter {
	f.Side = Side(strings.ToLower(strings.TrimSpace(string(f.Side))))
	f.Symbol = market.NormalizeSymbol(f.Symbol)
	return f
}

// Validate rejects a side other than buy, sell or empty.
func (f HistoryFilter) Validate() error {
	if side := f.normalize().Side; side != "" && !side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidTradeParameters, f.Side)
	}
	return nil
}

func (f HistoryFilter) match(t Transaction) bool {
	if f.Side != "" && t.Side != f.Side {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if !f.Since.IsZero() && t.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !t.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

// History returns the transactions matching f, sorted newest first by
// timestamp. Transactions with equal timestamps keep insertion order.
func (p *Portfolio) History(f HistoryFilter) Page {
	f = f.normalize()
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	matched := make([]Transaction, 0, len(p.Transactions))
	for _, t := range p.Transactions {
		if f.match(t) {
			matched = append(matched, t)
		}
	}
	slices.SortStableFunc(matched, func(a, b Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	page := Page{
		Total:   len(matched),
		Limit:   f.Limit,
		Offset:  f.Offset,
		HasPrev: f.Offset > 0,
	}
	start := min(f.Offset, len(matched))
	// start+Limit can overflow for huge limits.
	end := start + min(f.Limit, len(matched)-start)
	page.Transactions = matched[start:end]
	page.HasNext = end < len(matched)
	return page
}

// RealizedPL replays the sells of symbol against the weighted-average cost
// recorded at each sale. An empty symbol sums every symbol.
func (p *Portfolio) RealizedPL(symbol string) decimal.Decimal {
	symbol = market.NormalizeSymbol(symbol)
	total := decimal.Zero
	for _, t := range p.Transactions {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		total = total.Add(t.RealizedPL())
	}
	return total
}

// PeriodStart returns the start of a reporting window ending at now.
// Accepted periods: 7d, 30d, 90d, 1y.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "7d":
		return now.AddDate(0, 0, -7), nil
	case "30d":
		return now.AddDate(0, 0, -30), nil
	case "90d":
		return now.AddDate(0, 0, -90), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown period %q (want 7d, 30d, 90d or 1y)", period)
	}
}
