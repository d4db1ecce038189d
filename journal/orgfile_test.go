package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrgFileAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "diary.org")
	when := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

	for range 2 {
		o, err := NewOrgFile(path)
		require.NoError(t, err)
		require.NoError(t, o.RecordTransaction(TransactionRecord{
			TransactionID: "T1",
			PortfolioID:   "P1",
			Symbol:        "GOLD",
			Side:          "buy",
			Quantity:      decimal.NewFromInt(2),
			Price:         decimal.NewFromInt(2050),
			Total:         decimal.NewFromInt(-4100),
			Time:          when,
		}))
		require.NoError(t, o.RecordValuation(ValuationSnapshot{
			PortfolioID:        "P1",
			Time:               when,
			TotalValue:         decimal.NewFromInt(10100),
			TotalReturn:        decimal.NewFromInt(100),
			TotalReturnPercent: decimal.NewFromInt(1),
		}))
		require.NoError(t, o.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Equal(t, 2, strings.Count(out, "** BUY 2 GOLD (T1)"))
	assert.Equal(t, 2, strings.Count(out, "- 2024-03-15T10:30:45Z P1 value 10100.00 return 100.00 (1.00%)"))
}

func TestMultiWithFileSinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := NewCSV(filepath.Join(dir, "tx.csv"), filepath.Join(dir, "val.csv"))
	require.NoError(t, err)
	o, err := NewOrgFile(filepath.Join(dir, "diary.org"))
	require.NoError(t, err)

	m := Multi{c, o}
	require.NoError(t, m.RecordTransaction(TransactionRecord{TransactionID: "T9", Symbol: "OIL", Side: "sell"}))
	require.NoError(t, m.Close())

	tx, err := os.ReadFile(filepath.Join(dir, "tx.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(tx), "T9")

	org, err := os.ReadFile(filepath.Join(dir, "diary.org"))
	require.NoError(t, err)
	assert.Contains(t, string(org), ":ID: T9")
}
