package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/calebmorris/papertrade/internal/models"
)

// WriteSummary formats the portfolio snapshot as an aligned text table.
func WriteSummary(p *models.Portfolio) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Cash balance:\t$%.2f\n", p.Balance)
	fmt.Fprintf(w, "Total value:\t$%.2f\n", p.TotalValue)
	fmt.Fprintln(w)

	if len(p.Holdings) == 0 {
		fmt.Fprintln(w, "No open positions.")
		w.Flush()
		return sb.String()
	}

	fmt.Fprintln(w, "COIN\tQTY\tAVG BUY\tPRICE\tVALUE\tP/L\tP/L %")
	for _, h := range p.Holdings {
		fmt.Fprintf(w, "%s\t%.6f\t$%.2f\t$%.2f\t$%.2f\t%s\t%+.2f%%\n",
			strings.ToUpper(h.CoinSymbol),
			h.Quantity,
			h.AverageBuyPrice,
			h.CurrentPrice,
			h.CurrentValue,
			signedAmount(h.ProfitLoss),
			h.ProfitLossPercentage,
		)
	}

	w.Flush()
	return sb.String()
}

// signedAmount formats a currency delta with an explicit sign.
func signedAmount(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}
