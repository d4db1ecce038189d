package ledger

import (
	"testing"

	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(kv ...string) market.Snapshot {
	s := make(market.Snapshot)
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], dec(kv[i+1]))
	}
	return s
}

func TestRevalueSinglePosition(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "5", "100"), nil, t0)
	require.NoError(t, err)

	v := p.Revalue(snapshot("A", "110"))
	assertDec(t, "500", v.CashBalance)
	assertDec(t, "1050", v.TotalValue)
	assertDec(t, "50", v.TotalReturn)
	assertDec(t, "5", v.TotalReturnPercent)
	assertDec(t, "50", v.UnrealizedPL)

	require.Len(t, v.Positions, 1)
	pv := v.Positions[0]
	assert.True(t, pv.Priced)
	assertDec(t, "550", pv.MarketValue)
	assertDec(t, "50", pv.UnrealizedPL)
	assertDec(t, "10", pv.UnrealizedPLPercent)

	// cached on the portfolio
	assertDec(t, "1050", p.TotalValue)
	assertDec(t, "50", p.TotalReturn)
	assertDec(t, "5", p.TotalReturnPercent)
	assert.True(t, p.Positions["A"].LastKnownPrice.Valid)
	assertDec(t, "110", p.Positions["A"].LastKnownPrice.Decimal)
}

func TestRevaluePartialSnapshotKeepsLastPrice(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "2", "100"), nil, t0)
	require.NoError(t, err)
	_, err = p.Execute(buy("B", "4", "50"), nil, t0)
	require.NoError(t, err)

	p.Revalue(snapshot("A", "120", "B", "60"))
	v := p.Revalue(snapshot("A", "130"))

	require.Len(t, v.Positions, 2)
	assert.Equal(t, "A", v.Positions[0].Symbol)
	assert.Equal(t, "B", v.Positions[1].Symbol)
	assertDec(t, "130", v.Positions[0].LastKnownPrice.Decimal)
	assertDec(t, "60", v.Positions[1].LastKnownPrice.Decimal)
	// 600 cash + 2*130 + 4*60
	assertDec(t, "1100", v.TotalValue)
}

func TestRevalueIgnoresNonPositivePrices(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "1", "100"), nil, t0)
	require.NoError(t, err)
	p.Revalue(snapshot("A", "105"))

	v := p.Revalue(market.Snapshot{"A": decimal.Zero})
	assertDec(t, "105", v.Positions[0].LastKnownPrice.Decimal)

	v = p.Revalue(market.Snapshot{"A": dec("-3")})
	assertDec(t, "105", v.Positions[0].LastKnownPrice.Decimal)
}

func TestRevalueIsIdempotent(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "3", "100"), nil, t0)
	require.NoError(t, err)
	_, err = p.Execute(buy("B", "1", "7.5"), nil, t0)
	require.NoError(t, err)

	snap := snapshot("A", "90", "B", "8")
	first := p.Revalue(snap)
	afterFirst := p.Clone()
	second := p.Revalue(snap)

	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, p)
}

func TestRevalueNeverTouchesCashOrHoldings(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "3", "100"), nil, t0)
	require.NoError(t, err)

	cash := p.CashBalance
	qty := p.Positions["A"].Quantity
	txs := len(p.Transactions)

	p.Revalue(snapshot("A", "1", "ZZZ", "5"))
	assert.True(t, cash.Equal(p.CashBalance))
	assert.True(t, qty.Equal(p.Positions["A"].Quantity))
	assert.Len(t, p.Transactions, txs)
	_, ok := p.Positions["ZZZ"]
	assert.False(t, ok)
}

func TestUnpricedPositionMarkedAtCost(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "4", "25"), nil, t0)
	require.NoError(t, err)

	v := p.Revalue(market.Snapshot{})
	require.Len(t, v.Positions, 1)
	assert.False(t, v.Positions[0].Priced)
	assertDec(t, "100", v.Positions[0].MarketValue)
	assertDec(t, "0", v.Positions[0].UnrealizedPL)
	assertDec(t, "1000", v.TotalValue)
	assertDec(t, "0", v.TotalReturn)
}

func TestZeroCostGuards(t *testing.T) {
	t.Parallel()

	pos := &Position{
		Symbol:         "FREE",
		Quantity:       dec("2"),
		AverageCost:    decimal.Zero,
		LastKnownPrice: decimal.NewNullDecimal(dec("10")),
	}
	pv := pos.valuation()
	assertDec(t, "20", pv.UnrealizedPL)
	assertDec(t, "0", pv.UnrealizedPLPercent)

	p := NewPortfolio("P0", "o", decimal.Zero, t0)
	p.Positions["FREE"] = pos
	v := p.Valuation()
	assertDec(t, "20", v.TotalValue)
	assertDec(t, "20", v.TotalReturn)
	assertDec(t, "0", v.TotalReturnPercent)
}

func TestValuationDoesNotModify(t *testing.T) {
	t.Parallel()

	p := newTestPortfolio("1000")
	_, err := p.Execute(buy("A", "1", "10"), nil, t0)
	require.NoError(t, err)
	before := p.Clone()

	_ = p.Valuation()
	assert.Equal(t, before, p)
}
