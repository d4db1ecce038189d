package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialBalance is the virtual cash a new portfolio starts with when
// the caller has no preference.
var DefaultInitialBalance = decimal.NewFromInt(100_000)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool { return s == Buy || s == Sell }

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if !side.Valid() {
		return "", fmt.Errorf("%w: unknown side %q", ErrInvalidTradeParameters, s)
	}
	return side, nil
}

// Position is an open holding of one symbol.
type Position struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	// LastKnownPrice is only written by revaluation and stays invalid until
	// the first snapshot that quotes the symbol.
	LastKnownPrice decimal.NullDecimal `json:"last_known_price"`
	OpenedAt       time.Time           `json:"opened_at"`
}

// Transaction is an immutable record of one executed trade.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	Seq         int64           `json:"seq"`
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fee         decimal.Decimal `json:"fee"`
	// Total is the signed cash impact: negative for buys, positive for sells.
	Total decimal.Decimal `json:"total"`
	// CostBasis is the position's average cost at the time of a sell.
	CostBasis decimal.Decimal `json:"cost_basis"`
	Timestamp time.Time       `json:"timestamp"`
}

// RealizedPL is the profit of a sell against its recorded cost basis, net
// of the sell fee. Buys realize nothing.
func (t Transaction) RealizedPL() decimal.Decimal {
	if t.Side != Sell {
		return decimal.Zero
	}
	return t.Price.Sub(t.CostBasis).Mul(t.Quantity).Sub(t.Fee)
}

// Portfolio is one owner's cash, open positions and trade history.
type Portfolio struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	IsDefault      bool            `json:"is_default"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Positions      PositionBook    `json:"positions"`
	Transactions   []Transaction   `json:"transactions"`

	// Cached by the last revaluation; derived, never a source of truth.
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalReturn        decimal.Decimal `json:"total_return"`
	TotalReturnPercent decimal.Decimal `json:"total_return_percent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPortfolio returns an empty portfolio holding initialBalance in cash.
func NewPortfolio(id, ownerID string, initialBalance decimal.Decimal, now time.Time) *Portfolio {
	return &Portfolio{
		ID:             id,
		OwnerID:        ownerID,
		CashBalance:    initialBalance,
		InitialBalance: initialBalance,
		Positions:      make(PositionBook),
		TotalValue:     initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Position returns a copy of the position for symbol.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.Positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Clone returns a deep copy that shares no mutable state with p.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	dst := *p
	dst.Positions = make(PositionBook, len(p.Positions))
	for sym, pos := range p.Positions {
		cp := *pos
		dst.Positions[sym] = &cp
	}
	if p.Transactions != nil {
		dst.Transactions = make([]Transaction, len(p.Transactions))
		copy(dst.Transactions, p.Transactions)
	}
	return &dst
}

func (p *Portfolio) nextSeq() int64 {
	if n := len(p.Transactions); n > 0 {
		return p.Transactions[n-1].Seq + 1
	}
	return 1
}
