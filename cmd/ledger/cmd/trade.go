package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Buy or sell at a given price",
	Long: `Execute a paper trade against a portfolio. The price is supplied by the
caller; the ledger never fetches quotes.

Examples:
  ledger trade buy <portfolio-id> GOLD 10 1900.50
  ledger trade sell <portfolio-id> GOLD 4 1950 --fee-rate 0.001`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <portfolio-id> <symbol> <quantity> <price>",
	Short: "Buy quantity units of symbol",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Buy, args)
	},
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <portfolio-id> <symbol> <quantity> <price>",
	Short: "Sell quantity units of symbol",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Sell, args)
	},
}

var tradeFeeRate string

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)

	tradeCmd.PersistentFlags().StringVar(&tradeFeeRate, "fee-rate", "0", "fee as a fraction of quantity × price (percent fee model)")
}

func parseTradeRequest(side ledger.Side, symbol, qty, price string) (ledger.TradeRequest, error) {
	req := ledger.TradeRequest{Symbol: symbol, Side: side}

	var err error
	if req.Quantity, err = decimal.NewFromString(qty); err != nil {
		return req, fmt.Errorf("%w: quantity %q", ledger.ErrInvalidTradeParameters, qty)
	}
	if req.Price, err = decimal.NewFromString(price); err != nil {
		return req, fmt.Errorf("%w: price %q", ledger.ErrInvalidTradeParameters, price)
	}
	if req.FeeRate, err = decimal.NewFromString(tradeFeeRate); err != nil {
		return req, fmt.Errorf("%w: fee rate %q", ledger.ErrInvalidTradeParameters, tradeFeeRate)
	}
	return req, req.Validate()
}

func runTrade(cmd *cobra.Command, side ledger.Side, args []string) error {
	req, err := parseTradeRequest(side, args[1], args[2], args[3])
	if err != nil {
		return err
	}

	return withEngine(cmd, func(ctx context.Context, a *app) error {
		tx, err := a.engine.ExecuteTrade(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("%s [%s]: %w", side, ledger.ErrorCode(err), err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %s %s %s @ %s\n", tx.Side, tx.Quantity, tx.Symbol, tx.Price.StringFixed(4))
		fmt.Fprintf(out, "  Transaction: %s (#%d)\n", tx.ID, tx.Seq)
		fmt.Fprintf(out, "  Fee:   %s\n", tx.Fee.StringFixed(2))
		fmt.Fprintf(out, "  Total: %s\n", tx.Total.StringFixed(2))
		if tx.Side == ledger.Sell {
			fmt.Fprintf(out, "  Realized P/L: %s\n", tx.RealizedPL().StringFixed(2))
		}
		return nil
	})
}
