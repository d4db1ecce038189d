package ledger

import (
	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PositionValuation is the mark-to-market view of one position.
type PositionValuation struct {
	Symbol         string              `json:"symbol"`
	Quantity       decimal.Decimal     `json:"quantity"`
	AverageCost    decimal.Decimal     `json:"average_cost"`
	LastKnownPrice decimal.NullDecimal `json:"last_known_price"`
	// Priced is false until the symbol has appeared in a snapshot; the
	// position is then marked at its average cost.
	Priced              bool            `json:"priced"`
	MarketValue         decimal.Decimal `json:"market_value"`
	UnrealizedPL        decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPercent decimal.Decimal `json:"unrealized_pl_percent"`
}

// PortfolioValuation is the aggregate mark-to-market view of a portfolio.
type PortfolioValuation struct {
	PortfolioID        string              `json:"portfolio_id"`
	CashBalance        decimal.Decimal     `json:"cash_balance"`
	TotalValue         decimal.Decimal     `json:"total_value"`
	TotalReturn        decimal.Decimal     `json:"total_return"`
	TotalReturnPercent decimal.Decimal     `json:"total_return_percent"`
	UnrealizedPL       decimal.Decimal     `json:"unrealized_pl"`
	Positions          []PositionValuation `json:"positions"`
}

func (p *Position) valuation() PositionValuation {
	v := PositionValuation{
		Symbol:         p.Symbol,
		Quantity:       p.Quantity,
		AverageCost:    p.AverageCost,
		LastKnownPrice: p.LastKnownPrice,
		Priced:         p.LastKnownPrice.Valid,
	}

	mark := p.AverageCost
	if v.Priced {
		mark = p.LastKnownPrice.Decimal
	}
	diff := mark.Sub(p.AverageCost)

	v.MarketValue = p.Quantity.Mul(mark)
	v.UnrealizedPL = diff.Mul(p.Quantity)
	if !p.AverageCost.IsZero() {
		v.UnrealizedPLPercent = diff.Div(p.AverageCost).Mul(hundred)
	}
	return v
}

// Valuation computes figures from the prices already known to the
// portfolio. It does not modify the portfolio.
func (p *Portfolio) Valuation() PortfolioValuation {
	v := PortfolioValuation{
		PortfolioID: p.ID,
		CashBalance: p.CashBalance,
		TotalValue:  p.CashBalance,
		Positions:   make([]PositionValuation, 0, len(p.Positions)),
	}

	for _, sym := range p.Positions.Symbols() {
		pv := p.Positions[sym].valuation()
		v.TotalValue = v.TotalValue.Add(pv.MarketValue)
		v.UnrealizedPL = v.UnrealizedPL.Add(pv.UnrealizedPL)
		v.Positions = append(v.Positions, pv)
	}

	v.TotalReturn = v.TotalValue.Sub(p.InitialBalance)
	if !p.InitialBalance.IsZero() {
		v.TotalReturnPercent = v.TotalReturn.Div(p.InitialBalance).Mul(hundred)
	}
	return v
}

// Revalue records the snapshot prices of held symbols and refreshes the
// cached totals. Symbols missing from the snapshot, or quoted at a
// non-positive price, keep their previous price. Cash, quantities and the
// transaction log are never touched.
func (p *Portfolio) Revalue(snapshot market.Snapshot) PortfolioValuation {
	for sym, pos := range p.Positions {
		price, ok := snapshot.Price(sym)
		if !ok || !price.IsPositive() {
			continue
		}
		pos.LastKnownPrice = decimal.NewNullDecimal(price)
	}

	v := p.Valuation()
	p.TotalValue = v.TotalValue
	p.TotalReturn = v.TotalReturn
	p.TotalReturnPercent = v.TotalReturnPercent
	return v
}
