package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTransactionOrg renders a TransactionRecord as an Org-mode block
// suitable for pasting into a trading diary. Structured facts live in the
// PROPERTIES drawer; the Notes heading is left for the reader.
func FormatTransactionOrg(t TransactionRecord) string {
	heading := fmt.Sprintf("** %s %s %s (%s)", strings.ToUpper(t.Side), t.Quantity.String(), t.Symbol, shortID(t.TransactionID))
	when := t.Time.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.TransactionID))
	b.WriteString(fmt.Sprintf(":PORTFOLIO_ID: %s\n", t.PortfolioID))
	b.WriteString(fmt.Sprintf(":SEQ: %d\n", t.Seq))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", t.Side))
	b.WriteString(fmt.Sprintf(":QUANTITY: %s\n", t.Quantity.String()))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", t.Price.StringFixed(4)))
	b.WriteString(fmt.Sprintf(":FEE: %s\n", t.Fee.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":TOTAL: %s\n", t.Total.StringFixed(2)))
	if t.Side == "sell" {
		b.WriteString(fmt.Sprintf(":COST_BASIS: %s\n", t.CostBasis.StringFixed(4)))
		realized := t.Price.Sub(t.CostBasis).Mul(t.Quantity).Sub(t.Fee)
		b.WriteString(fmt.Sprintf(":REALIZED_PL: %s\n", realized.StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf(":TIME: %s\n", when))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")

	return b.String()
}

// FormatTransactionsOrg renders multiple transactions separated by blank lines.
func FormatTransactionsOrg(txs []TransactionRecord) string {
	var b strings.Builder
	for i, t := range txs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTransactionOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
