package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/internal/id"
	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
)

// TradeRequest is a single buy or sell instruction.
type TradeRequest struct {
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	// FeeRate feeds PercentFee; other strategies may ignore it.
	FeeRate decimal.Decimal `json:"fee_rate"`
}

// Validate checks the request without looking at any portfolio.
func (r TradeRequest) Validate() error {
	if market.NormalizeSymbol(r.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTradeParameters)
	}
	if !r.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidTradeParameters, r.Side)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTradeParameters, r.Quantity)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidTradeParameters, r.Price)
	}
	if r.FeeRate.IsNegative() {
		return fmt.Errorf("%w: fee rate must not be negative, got %s", ErrInvalidTradeParameters, r.FeeRate)
	}
	return nil
}

// Execute applies req to the portfolio and appends the resulting
// transaction. Every check happens before the first write, so on error the
// portfolio is left exactly as it was.
func (p *Portfolio) Execute(req TradeRequest, fees FeeStrategy, now time.Time) (Transaction, error) {
	if err := req.Validate(); err != nil {
		return Transaction{}, err
	}
	req.Symbol = market.NormalizeSymbol(req.Symbol)

	if fees == nil {
		fees = PercentFee{}
	}
	fee := fees.Fee(req)
	if fee.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: fee must not be negative, got %s", ErrInvalidTradeParameters, fee)
	}
	if p.Positions == nil {
		p.Positions = make(PositionBook)
	}

	gross := req.Quantity.Mul(req.Price)
	tx := Transaction{
		ID:          id.At(now),
		PortfolioID: p.ID,
		Seq:         p.nextSeq(),
		Symbol:      req.Symbol,
		Side:        req.Side,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Fee:         fee,
		Timestamp:   now,
	}

	switch req.Side {
	case Buy:
		cost := gross.Add(fee)
		if p.CashBalance.LessThan(cost) {
			return Transaction{}, fmt.Errorf("%w: buy %s %s costs %s, cash %s",
				ErrInsufficientFunds, req.Quantity, req.Symbol, cost, p.CashBalance)
		}
		p.CashBalance = p.CashBalance.Sub(cost)
		p.Positions.upsertOnBuy(req.Symbol, req.Quantity, req.Price, now)
		tx.Total = cost.Neg()

	case Sell:
		pos, ok := p.Positions[req.Symbol]
		if !ok || pos.Quantity.LessThan(req.Quantity) {
			held := decimal.Zero
			if ok {
				held = pos.Quantity
			}
			return Transaction{}, fmt.Errorf("%w: sell %s %s, holding %s",
				ErrInsufficientHoldings, req.Quantity, req.Symbol, held)
		}
		proceeds := gross.Sub(fee)
		// A per-unit fee can exceed the sale price.
		if p.CashBalance.Add(proceeds).IsNegative() {
			return Transaction{}, fmt.Errorf("%w: sell %s %s fee %s exceeds proceeds and cash",
				ErrInsufficientFunds, req.Quantity, req.Symbol, fee)
		}
		basis := pos.AverageCost
		if err := p.Positions.reduceOnSell(req.Symbol, req.Quantity); err != nil {
			return Transaction{}, err
		}
		p.CashBalance = p.CashBalance.Add(proceeds)
		tx.Total = proceeds
		tx.CostBasis = basis
	}

	p.Transactions = append(p.Transactions, tx)
	p.UpdatedAt = now
	return tx, nil
}
