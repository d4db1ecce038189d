package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rustyeddy/ledger/journal"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions as Org-mode or CSV",
	Long: `Export a portfolio's transaction log.

Subcommands:
  org - Print Org-mode blocks, one per transaction
  csv - Write transactions.csv and valuations.csv

Examples:
  ledger export org <portfolio-id> > trades.org
  ledger export csv <portfolio-id> --dir ./out`,
}

var exportOrgCmd = &cobra.Command{
	Use:   "org <portfolio-id>",
	Short: "Print transactions as Org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportOrg,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv <portfolio-id>",
	Short: "Write transactions and current valuation as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCSV,
}

var exportDir string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportOrgCmd)
	exportCmd.AddCommand(exportCSVCmd)

	exportCSVCmd.Flags().StringVar(&exportDir, "dir", ".", "output directory")
}

func runExportOrg(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, a *app) error {
		p, err := a.engine.GetPortfolio(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get portfolio: %w", err)
		}

		recs := make([]journal.TransactionRecord, 0, len(p.Transactions))
		for _, t := range p.Transactions {
			recs = append(recs, t.Record())
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "* %s (%s)\n", p.Name, p.ID)
		if len(recs) > 0 {
			fmt.Fprintln(out, journal.FormatTransactionsOrg(recs))
		}
		return nil
	})
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, a *app) error {
		p, err := a.engine.GetPortfolio(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get portfolio: %w", err)
		}

		txPath := filepath.Join(exportDir, "transactions.csv")
		valPath := filepath.Join(exportDir, "valuations.csv")
		j, err := journal.NewCSV(txPath, valPath)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}

		for _, t := range p.Transactions {
			if err := j.RecordTransaction(t.Record()); err != nil {
				_ = j.Close()
				return fmt.Errorf("write transaction %s: %w", t.ID, err)
			}
		}
		v := p.Valuation()
		err = j.RecordValuation(journal.ValuationSnapshot{
			PortfolioID:        p.ID,
			Time:               p.UpdatedAt,
			CashBalance:        v.CashBalance,
			TotalValue:         v.TotalValue,
			TotalReturn:        v.TotalReturn,
			TotalReturnPercent: v.TotalReturnPercent,
		})
		if err != nil {
			_ = j.Close()
			return fmt.Errorf("write valuation: %w", err)
		}
		if err := j.Close(); err != nil {
			return fmt.Errorf("close csv: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d transactions to %s\n", len(p.Transactions), txPath)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote valuation to %s\n", valPath)
		return nil
	})
}
