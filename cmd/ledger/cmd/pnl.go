package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/market"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var pnlCmd = &cobra.Command{
	Use:   "pnl <portfolio-id>",
	Short: "Show realized and unrealized profit",
	Long: `Realized P/L replays every sell against the weighted-average cost at the
time of sale, net of fees. Unrealized P/L uses the last known prices.

Examples:
  ledger pnl <portfolio-id>
  ledger pnl <portfolio-id> --symbol GOLD --period 90d`,
	Args: cobra.ExactArgs(1),
	RunE: runPnL,
}

var (
	pnlSymbol string
	pnlPeriod string
)

func init() {
	rootCmd.AddCommand(pnlCmd)

	pnlCmd.Flags().StringVar(&pnlSymbol, "symbol", "", "only this symbol")
	pnlCmd.Flags().StringVar(&pnlPeriod, "period", "", "only sells in the last 7d, 30d, 90d or 1y")
}

func runPnL(cmd *cobra.Command, args []string) error {
	var since time.Time
	if pnlPeriod != "" {
		var err error
		if since, err = ledger.PeriodStart(pnlPeriod, time.Now()); err != nil {
			return err
		}
	}

	return withEngine(cmd, func(ctx context.Context, a *app) error {
		p, err := a.engine.GetPortfolio(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get portfolio: %w", err)
		}

		var realized decimal.Decimal
		if since.IsZero() {
			if realized, err = a.engine.RealizedPL(ctx, p.ID, pnlSymbol); err != nil {
				return fmt.Errorf("realized p/l: %w", err)
			}
		} else {
			page := p.History(ledger.HistoryFilter{
				Side:   ledger.Sell,
				Symbol: pnlSymbol,
				Since:  since,
				Limit:  len(p.Transactions) + 1,
			})
			for _, t := range page.Transactions {
				realized = realized.Add(t.RealizedPL())
			}
		}

		v := p.Valuation()
		unrealized := v.UnrealizedPL
		if pnlSymbol != "" {
			unrealized = decimal.Zero
			sym := market.NormalizeSymbol(pnlSymbol)
			for _, pv := range v.Positions {
				if pv.Symbol == sym {
					unrealized = pv.UnrealizedPL
				}
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Realized P/L:   %s\n", realized.StringFixed(2))
		fmt.Fprintf(out, "Unrealized P/L: %s\n", unrealized.StringFixed(2))
		fmt.Fprintf(out, "Total return:   %s (%s%%)\n", v.TotalReturn.StringFixed(2), v.TotalReturnPercent.StringFixed(2))
		return nil
	})
}
