package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"pf"},
	Short:   "Create, inspect and rename portfolios",
	Long: `Manage paper-trading portfolios.

Subcommands:
  create - Open a new portfolio for an owner
  show   - Show cash, positions and valuation of a portfolio
  list   - List the portfolios of an owner
  rename - Change the name or description of a portfolio

Examples:
  ledger portfolio create --owner alice --balance 25000
  ledger portfolio show <portfolio-id>
  ledger portfolio list --owner alice`,
}

var portfolioCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioCreate,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show <portfolio-id>",
	Short: "Show a portfolio",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioShow,
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the portfolios of an owner",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioList,
}

var portfolioRenameCmd = &cobra.Command{
	Use:   "rename <portfolio-id>",
	Short: "Change name or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioRename,
}

var (
	pfOwner       string
	pfName        string
	pfDescription string
	pfBalance     string
	pfJSON        bool
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioCreateCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioRenameCmd)

	portfolioCreateCmd.Flags().StringVar(&pfOwner, "owner", "", "owner id (required)")
	portfolioCreateCmd.Flags().StringVar(&pfName, "name", "", "portfolio name (default Main, then Portfolio N)")
	portfolioCreateCmd.Flags().StringVar(&pfDescription, "description", "", "free text description")
	portfolioCreateCmd.Flags().StringVar(&pfBalance, "balance", "", "initial cash (default ledger.default_initial_balance)")
	_ = portfolioCreateCmd.MarkFlagRequired("owner")

	portfolioListCmd.Flags().StringVar(&pfOwner, "owner", "", "owner id (required)")
	_ = portfolioListCmd.MarkFlagRequired("owner")

	portfolioShowCmd.Flags().BoolVar(&pfJSON, "json", false, "print the portfolio as JSON")

	portfolioRenameCmd.Flags().StringVar(&pfName, "name", "", "new name")
	portfolioRenameCmd.Flags().StringVar(&pfDescription, "description", "", "new description")
}

func runPortfolioCreate(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, a *app) error {
		balance := a.cfg.Ledger.DefaultInitialBalance
		if pfBalance != "" {
			var err error
			if balance, err = decimal.NewFromString(pfBalance); err != nil {
				return fmt.Errorf("balance %q: %w", pfBalance, err)
			}
		}

		p, err := a.engine.CreatePortfolio(ctx, pfOwner, balance,
			ledger.WithName(pfName),
			ledger.WithDescription(pfDescription),
		)
		if err != nil {
			return fmt.Errorf("create portfolio: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created portfolio %s\n", p.ID)
		fmt.Fprintf(out, "  Name: %s\n", p.Name)
		fmt.Fprintf(out, "  Cash: %s\n", p.CashBalance.StringFixed(2))
		if p.IsDefault {
			fmt.Fprintln(out, "  Default portfolio")
		}
		return nil
	})
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, a *app) error {
		p, err := a.engine.GetPortfolio(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get portfolio: %w", err)
		}

		if pfJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}
		printPortfolio(cmd.OutOrStdout(), p, p.Valuation())
		return nil
	})
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, a *app) error {
		list, err := a.engine.ListPortfolios(ctx, pfOwner)
		if err != nil {
			return fmt.Errorf("list portfolios: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintf(out, "no portfolios for %s\n", pfOwner)
			return nil
		}
		for _, p := range list {
			mark := " "
			if p.IsDefault {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s  %-20s cash %14s  value %14s\n",
				mark, p.ID, p.Name, p.CashBalance.StringFixed(2), p.TotalValue.StringFixed(2))
		}
		return nil
	})
}

func runPortfolioRename(cmd *cobra.Command, args []string) error {
	var d ledger.Details
	if cmd.Flags().Changed("name") {
		d.Name = &pfName
	}
	if cmd.Flags().Changed("description") {
		d.Description = &pfDescription
	}
	if d.Name == nil && d.Description == nil {
		return fmt.Errorf("nothing to change: pass --name and/or --description")
	}

	return withEngine(cmd, func(ctx context.Context, a *app) error {
		p, err := a.engine.UpdateDetails(ctx, args[0], d)
		if err != nil {
			return fmt.Errorf("update portfolio: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated portfolio %s: %s\n", p.ID, p.Name)
		return nil
	})
}

func printPortfolio(w io.Writer, p *ledger.Portfolio, v ledger.PortfolioValuation) {
	fmt.Fprintf(w, "Portfolio %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  Owner:        %s\n", p.OwnerID)
	if p.Description != "" {
		fmt.Fprintf(w, "  Description:  %s\n", p.Description)
	}
	fmt.Fprintf(w, "  Cash:         %s\n", v.CashBalance.StringFixed(2))
	fmt.Fprintf(w, "  Total value:  %s\n", v.TotalValue.StringFixed(2))
	fmt.Fprintf(w, "  Total return: %s (%s%%)\n", v.TotalReturn.StringFixed(2), v.TotalReturnPercent.StringFixed(2))
	fmt.Fprintf(w, "  Unrealized:   %s\n", v.UnrealizedPL.StringFixed(2))

	if len(v.Positions) == 0 {
		fmt.Fprintln(w, "  No open positions")
		return
	}
	fmt.Fprintf(w, "\n  %-10s %12s %12s %12s %14s %12s\n", "SYMBOL", "QTY", "AVG COST", "PRICE", "VALUE", "P/L")
	for _, pv := range v.Positions {
		price := "-"
		if pv.Priced {
			price = pv.LastKnownPrice.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "  %-10s %12s %12s %12s %14s %12s\n",
			pv.Symbol, pv.Quantity.String(), pv.AverageCost.StringFixed(2), price,
			pv.MarketValue.StringFixed(2), pv.UnrealizedPL.StringFixed(2))
	}
}
