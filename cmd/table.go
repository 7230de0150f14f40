package cmd

import (
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/skipera/skipera/internal/ui/theme"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
	footerCell = cell.Bold(true)
)

// printTable renders rows under headers. A non-nil footer is styled as a
// totals line.
func printTable(w io.Writer, headers []string, rows [][]string, footer []string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...)
	if footer != nil {
		t.Row(footer...)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerCell
		case footer != nil && row == len(rows):
			return footerCell
		default:
			return cell
		}
	})
	fmt.Fprintln(w, t.Render())
}

func timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
