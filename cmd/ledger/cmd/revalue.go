package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/ledger/market"
	"github.com/spf13/cobra"
)

var revalueCmd = &cobra.Command{
	Use:   "revalue <portfolio-id> [SYMBOL=PRICE...]",
	Short: "Mark a portfolio to market",
	Long: `Record the given prices on the portfolio's positions and refresh its
total value and return. Held symbols left out keep their last known price.

Prices come from the arguments and from --prices-file, one SYMBOL=PRICE
per line with an optional RFC3339 time. Arguments win over the file.
With --max-age, file quotes older than that are ignored.

Examples:
  ledger revalue <portfolio-id> GOLD=1925.10 OIL=78.2
  ledger revalue <portfolio-id> --prices-file closes.txt --max-age 24h`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRevalue,
}

var (
	revaluePricesFile string
	revalueMaxAge     time.Duration
)

func init() {
	rootCmd.AddCommand(revalueCmd)

	revalueCmd.Flags().StringVar(&revaluePricesFile, "prices-file", "", "file of SYMBOL=PRICE [time] lines")
	revalueCmd.Flags().DurationVar(&revalueMaxAge, "max-age", 0, "ignore quotes older than this (0 keeps all)")
}

// loadPrices fills a PriceStore from --prices-file and then the arguments,
// so a symbol given on the command line replaces the file's quote.
func loadPrices(args []string, now time.Time) (*market.PriceStore, error) {
	ps := market.NewPriceStore()

	if revaluePricesFile != "" {
		f, err := os.Open(revaluePricesFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		quotes, err := market.ReadQuotes(f, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", revaluePricesFile, err)
		}
		for _, q := range quotes {
			ps.Set(q)
		}
	}

	for _, a := range args {
		q, err := market.ParseQuote(a)
		if err != nil {
			return nil, err
		}
		q.Time = now
		ps.Set(q)
	}
	return ps, nil
}

func runRevalue(cmd *cobra.Command, args []string) error {
	now := time.Now()
	ps, err := loadPrices(args[1:], now)
	if err != nil {
		return fmt.Errorf("prices: %w", err)
	}

	var cutoff time.Time
	if revalueMaxAge > 0 {
		cutoff = now.Add(-revalueMaxAge)
	}
	snap := ps.SnapshotSince(cutoff)

	return withEngine(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.engine.Revalue(ctx, args[0], snap); err != nil {
			return fmt.Errorf("revalue: %w", err)
		}
		p, err := a.engine.GetPortfolio(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get portfolio: %w", err)
		}
		printPortfolio(cmd.OutOrStdout(), p, p.Valuation())
		return nil
	})
}
