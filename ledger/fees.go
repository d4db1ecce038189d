package ledger

import "github.com/shopspring/decimal"

// FeeStrategy computes the fee charged for a trade. Implementations must be
// deterministic and return a non-negative amount.
type FeeStrategy interface {
	Fee(req TradeRequest) decimal.Decimal
}

// FeeFunc adapts a plain function to FeeStrategy.
type FeeFunc func(req TradeRequest) decimal.Decimal

func (f FeeFunc) Fee(req TradeRequest) decimal.Decimal { return f(req) }

// PercentFee charges quantity × price × req.FeeRate. With a zero FeeRate the
// trade is free, which makes it the default strategy.
type PercentFee struct{}

func (PercentFee) Fee(req TradeRequest) decimal.Decimal {
	return req.Quantity.Mul(req.Price).Mul(req.FeeRate)
}

// PerUnitFee charges a flat amount for every unit traded.
type PerUnitFee struct {
	Amount decimal.Decimal
}

func (f PerUnitFee) Fee(req TradeRequest) decimal.Decimal {
	return req.Quantity.Mul(f.Amount)
}

// NoFee never charges.
type NoFee struct{}

func (NoFee) Fee(TradeRequest) decimal.Decimal { return decimal.Zero }
