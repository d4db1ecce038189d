package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <portfolio-id>",
	Short: "List transactions, newest first",
	Long: `Page through a portfolio's transactions, newest first.

Examples:
  ledger history <portfolio-id>
  ledger history <portfolio-id> --side sell --symbol GOLD
  ledger history <portfolio-id> --period 30d --limit 50 --offset 50`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	histSide   string
	histSymbol string
	histPeriod string
	histLimit  int
	histOffset int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&histSide, "side", "", "only buy or sell")
	historyCmd.Flags().StringVar(&histSymbol, "symbol", "", "only this symbol")
	historyCmd.Flags().StringVar(&histPeriod, "period", "", "only the last 7d, 30d, 90d or 1y")
	historyCmd.Flags().IntVar(&histLimit, "limit", ledger.DefaultHistoryLimit, "page size")
	historyCmd.Flags().IntVar(&histOffset, "offset", 0, "transactions to skip")
}

func historyFilter(now time.Time) (ledger.HistoryFilter, error) {
	f := ledger.HistoryFilter{
		Symbol: histSymbol,
		Limit:  histLimit,
		Offset: histOffset,
	}
	if histSide != "" {
		side, err := ledger.ParseSide(histSide)
		if err != nil {
			return f, err
		}
		f.Side = side
	}
	if histPeriod != "" {
		since, err := ledger.PeriodStart(histPeriod, now)
		if err != nil {
			return f, err
		}
		f.Since = since
	}
	return f, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	f, err := historyFilter(time.Now())
	if err != nil {
		return err
	}

	return withEngine(cmd, func(ctx context.Context, a *app) error {
		page, err := a.engine.GetHistory(ctx, args[0], f)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}

		out := cmd.OutOrStdout()
		if page.Total == 0 {
			fmt.Fprintln(out, "no transactions")
			return nil
		}
		for _, t := range page.Transactions {
			fmt.Fprintf(out, "%s  #%-4d %-4s %10s %-8s @ %12s  fee %8s  total %12s\n",
				t.Timestamp.Local().Format("2006-01-02 15:04:05"), t.Seq, t.Side,
				t.Quantity.String(), t.Symbol, t.Price.StringFixed(4),
				t.Fee.StringFixed(2), t.Total.StringFixed(2))
		}

		end := page.Offset + len(page.Transactions)
		fmt.Fprintf(out, "\n%d-%d of %d", min(page.Offset+1, end), end, page.Total)
		if page.HasNext {
			fmt.Fprintf(out, "  (next: --offset %d)", end)
		}
		fmt.Fprintln(out)
		return nil
	})
}
