package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Commands share package-level flag variables, so these tests run serially.

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func createPortfolio(t *testing.T, db string, extra ...string) string {
	t.Helper()

	out, err := run(t, append([]string{"--db", db, "portfolio", "create", "--owner", "alice"}, extra...)...)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "✓ Created portfolio "), out)

	fields := strings.Fields(strings.SplitN(out, "\n", 2)[0])
	return fields[len(fields)-1]
}

func TestTradingSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	id := createPortfolio(t, db, "--balance", "1000")

	out, err := run(t, "--db", db, "trade", "buy", id, "a", "5", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ buy 5 A @ 100.0000")
	assert.Contains(t, out, "Total: -500.00")

	_, err = run(t, "--db", db, "trade", "sell", id, "A", "9", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRADE_HOLDINGS")

	_, err = run(t, "--db", db, "trade", "buy", id, "A", "abc", "100")
	assert.ErrorContains(t, err, "invalid trade parameters")

	out, err = run(t, "--db", db, "revalue", id, "A=110")
	require.NoError(t, err)
	assert.Contains(t, out, "Total value:  1050.00")
	assert.Contains(t, out, "Total return: 50.00 (5.00%)")

	out, err = run(t, "--db", db, "history", id)
	require.NoError(t, err)
	assert.Contains(t, out, "1-1 of 1")

	out, err = run(t, "--db", db, "pnl", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Realized P/L:   0.00")
	assert.Contains(t, out, "Unrealized P/L: 50.00")

	out, err = run(t, "--db", db, "trade", "sell", id, "A", "5", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Realized P/L: 100.00")

	out, err = run(t, "--db", db, "history", id, "--side", "sell", "--period", "7d")
	require.NoError(t, err)
	assert.Contains(t, out, "1-1 of 1")

	out, err = run(t, "--db", db, "pnl", id, "--period", "30d")
	require.NoError(t, err)
	assert.Contains(t, out, "Realized P/L:   100.00")

	out, err = run(t, "--db", db, "export", "org", id)
	require.NoError(t, err)
	assert.Contains(t, out, "** BUY 5 A")
	assert.Contains(t, out, "** SELL 5 A")

	dir := t.TempDir()
	_, err = run(t, "--db", db, "export", "csv", id, "--dir", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)
}

func TestPortfolioCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	first := createPortfolio(t, db)
	createPortfolio(t, db, "--name", "Swing")

	_, err := run(t, "--db", db, "portfolio", "create", "--owner", "alice", "--name", "swing")
	assert.ErrorContains(t, err, "portfolio already exists")

	out, err := run(t, "--db", db, "portfolio", "list", "--owner", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+first)
	assert.Contains(t, out, "Main")
	assert.Contains(t, out, "Swing")

	out, err = run(t, "--db", db, "portfolio", "rename", first, "--name", "Core")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated portfolio "+first+": Core")

	_, err = run(t, "--db", db, "portfolio", "rename", first)
	assert.ErrorContains(t, err, "nothing to change")

	out, err = run(t, "--db", db, "portfolio", "show", first)
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio Core")
	assert.Contains(t, out, "Cash:         100000.00")
	assert.Contains(t, out, "No open positions")

	out, err = run(t, "--db", db, "portfolio", "show", first, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Core"`)

	_, err = run(t, "--db", db, "portfolio", "show", "missing")
	assert.ErrorContains(t, err, "portfolio not found")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created default configuration")

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
	assert.Contains(t, out, "Initial balance: 100000.00")

	_, err = run(t, "config", "validate")
	assert.Error(t, err)
}

func TestConfigFileDrivesEngine(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ledger.yaml")
	cfg := strings.Join([]string{
		"ledger:",
		"  default_initial_balance: \"2500\"",
		"  fee:",
		"    model: per_unit",
		"    per_unit: \"1\"",
		"store:",
		"  type: sqlite",
		"  db_path: " + filepath.Join(dir, "cfg.db"),
		"journal:",
		"  type: csv",
		"  transactions_file: " + filepath.Join(dir, "tx.csv"),
		"  valuations_file: " + filepath.Join(dir, "val.csv"),
		"  org_file: " + filepath.Join(dir, "diary.org"),
		"log:",
		"  level: error",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := run(t, "--config", cfgPath, "portfolio", "create", "--owner", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Cash: 2500.00")
	id := strings.Fields(strings.SplitN(out, "\n", 2)[0])[3]

	out, err = run(t, "--config", cfgPath, "trade", "buy", id, "OIL", "10", "70")
	require.NoError(t, err)
	assert.Contains(t, out, "Fee:   10.00")
	assert.Contains(t, out, "Total: -710.00")

	data, err := os.ReadFile(filepath.Join(dir, "tx.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), id)

	org, err := os.ReadFile(filepath.Join(dir, "diary.org"))
	require.NoError(t, err)
	assert.Contains(t, string(org), "** BUY 10 OIL")
	assert.Contains(t, string(org), ":PORTFOLIO_ID: "+id)
}

func TestRevaluePricesFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	id := createPortfolio(t, db, "--balance", "1000")

	for _, args := range [][]string{
		{"trade", "buy", id, "GOLD", "2", "100"},
		{"trade", "buy", id, "OIL", "5", "20"},
	} {
		_, err := run(t, append([]string{"--db", db}, args...)...)
		require.NoError(t, err)
	}

	prices := filepath.Join(dir, "closes.txt")
	require.NoError(t, os.WriteFile(prices, []byte(strings.Join([]string{
		"# closes",
		"GOLD=150",
		"OIL=30 2001-01-01T00:00:00Z",
		"",
	}, "\n")), 0644))

	// The stale OIL quote is dropped; GOLD comes from the file.
	out, err := run(t, "--db", db, "revalue", id, "--prices-file", prices, "--max-age", "1h")
	require.NoError(t, err)
	// 700 cash + 2*150 + 5*20 at cost
	assert.Contains(t, out, "Total value:  1100.00")

	// Arguments win over the file.
	out, err = run(t, "--db", db, "revalue", id, "GOLD=110", "--prices-file", prices)
	require.NoError(t, err)
	// 700 + 2*110 + 5*30
	assert.Contains(t, out, "Total value:  1070.00")

	_, err = run(t, "--db", db, "revalue", id, "--prices-file", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger version "+version)
}

func TestTradeFeeRate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	id := createPortfolio(t, db, "--balance", "1000")

	out, err := run(t, "--db", db, "trade", "buy", id, "GOLD", "5", "100", "--fee-rate", "0.01")
	require.NoError(t, err)
	assert.Contains(t, out, "Fee:   5.00")
	assert.Contains(t, out, "Total: -505.00")

	// the flag does not leak into the next invocation
	out, err = run(t, "--db", db, "trade", "buy", id, "GOLD", "1", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Fee:   0.00")
}
