package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func newTestPortfolio(cash string) *Portfolio {
	return NewPortfolio("P1", "owner-1", dec(cash), t0)
}

func buy(sym, qty, price string) TradeRequest {
	return TradeRequest{Symbol: sym, Side: Buy, Quantity: dec(qty), Price: dec(price)}
}

func sell(sym, qty, price string) TradeRequest {
	return TradeRequest{Symbol: sym, Side: Sell, Quantity: dec(qty), Price: dec(price)}
}

func timeMinutes(n int) time.Duration { return time.Duration(n) * time.Minute }

// stepClock returns a clock advancing one second per call.
func stepClock() func() time.Time {
	var (
		mu sync.Mutex
		n  int
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}
