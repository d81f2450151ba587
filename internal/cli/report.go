package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// RenderSummary formats the statistics of a finished run.
func RenderSummary(stats service.CompletionStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  • Transactions: %d\n", stats.TotalTransactions)
	fmt.Fprintf(&b, "  • Groups: %d\n", stats.Groups)
	fmt.Fprintf(&b, "  • Oracle calls: %d %s\n", stats.OracleCalls, oracleIcon)
	if stats.Disagreements > 0 {
		b.WriteString("  • " + WarningStyle.Render(fmt.Sprintf("Disagreements: %d", stats.Disagreements)) + "\n")
	} else {
		fmt.Fprintf(&b, "  • Disagreements: %d\n", stats.Disagreements)
	}
	fmt.Fprintf(&b, "  • Time taken: %s", stats.Duration.Round(time.Millisecond))

	return RenderBox("Categorization Complete", b.String())
}

// WriteTokens prints every transaction with the tokens it is grouped by.
func WriteTokens(w io.Writer, transactions []model.Transaction) error {
	if _, err := fmt.Fprintln(w, FormatTitle(fmt.Sprintf("Tokens for %d transactions", len(transactions)))); err != nil {
		return err
	}

	for _, txn := range transactions {
		line := fmt.Sprintf("%s  %s\n    %s",
			SubtleStyle.Render(txn.Date.Format("2006-01-02")),
			txn.Description.String(),
			renderTokens(engine.Tokens(txn)))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteGroups prints each group's signature and members in grouping order.
func WriteGroups(w io.Writer, groups []engine.Group) error {
	if _, err := fmt.Fprintln(w, FormatTitle(fmt.Sprintf("%d groups", len(groups)))); err != nil {
		return err
	}

	for i, group := range groups {
		header := fmt.Sprintf("%d. %s %s", i+1, TokenStyle.Render(group.Signature),
			SubtleStyle.Render(fmt.Sprintf("(%d transactions)", len(group.Transactions))))
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		for _, txn := range group.Transactions {
			if _, err := fmt.Fprintf(w, "    %s  %s  %s\n",
				txn.Date.Format("2006-01-02"), txn.Description.String(), txn.Amount.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderTokens(tokens []string) string {
	rendered := make([]string, len(tokens))
	for i, token := range tokens {
		rendered[i] = TokenStyle.Render(token)
	}
	return strings.Join(rendered, " ")
}
