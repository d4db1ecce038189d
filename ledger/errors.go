package ledger

import "errors"

var (
	// ErrInvalidTradeParameters rejects a non-positive quantity or price, an
	// empty symbol, an unknown side, or a negative fee.
	ErrInvalidTradeParameters = errors.New("invalid trade parameters")
	// ErrInsufficientFunds rejects a buy whose cost plus fee exceeds cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings rejects a sell of a symbol that is not held or
	// is held in a smaller quantity.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrPortfolioNotFound is returned for unknown portfolio ids.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	ErrInvalidPortfolio = errors.New("invalid portfolio")
	ErrPortfolioExists  = errors.New("portfolio already exists")
)

// ErrorCode maps an error returned by this package to a stable code that
// outer layers can expose to users.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTradeParameters):
		return "TRADE_INVALID"
	case errors.Is(err, ErrInsufficientFunds):
		return "TRADE_FUNDS"
	case errors.Is(err, ErrInsufficientHoldings):
		return "TRADE_HOLDINGS"
	case errors.Is(err, ErrPortfolioNotFound):
		return "PORTFOLIO_NOT_FOUND"
	case errors.Is(err, ErrInvalidPortfolio):
		return "PORTFOLIO_INVALID"
	case errors.Is(err, ErrPortfolioExists):
		return "PORTFOLIO_EXISTS"
	default:
		return "INTERNAL"
	}
}
