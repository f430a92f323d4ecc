package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hively/hively/internal/budget"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB347")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#333"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	overStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB347"))
)

const barWidth = 30

// Render formats the full report for the terminal.
func Render(r *Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Spending Report"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d expenses, %s total\n\n", r.Count, r.Total.StringFixed(2)))

	if len(r.Categories) > 0 {
		b.WriteString(headerStyle.Render("By Category"))
		b.WriteString("\n")
		for _, cat := range r.Categories {
			b.WriteString(fmt.Sprintf("%-16s %10s  %s %s\n",
				cat.Name,
				cat.Total.StringFixed(2),
				bar(cat.Share),
				subtleStyle.Render(fmt.Sprintf("%5.1f%%", cat.Share))))
		}
		b.WriteString("\n")
	}

	if len(r.Months) > 0 {
		b.WriteString(headerStyle.Render("By Month"))
		b.WriteString("\n")
		for _, mt := range r.Months {
			b.WriteString(fmt.Sprintf("%-10s %10s  %s\n",
				mt.Month.Format("Jan 2006"),
				mt.Total.StringFixed(2),
				subtleStyle.Render(fmt.Sprintf("%d expenses", mt.Count))))
		}
		b.WriteString("\n")
	}

	if len(r.Modes) > 0 {
		b.WriteString(headerStyle.Render("By Payment Mode"))
		b.WriteString("\n")
		for _, mode := range r.Modes {
			b.WriteString(fmt.Sprintf("%-8s %10s  %s\n",
				mode.Mode,
				mode.Total.StringFixed(2),
				subtleStyle.Render(fmt.Sprintf("%d expenses", mode.Count))))
		}
	}

	return b.String()
}

// RenderBudget formats the monthly budget status line.
func RenderBudget(status budget.Status) string {
	if !status.HasBudget {
		return subtleStyle.Render("No monthly budget set.")
	}

	line := fmt.Sprintf("Budget %s  Spent %s  Remaining %s  %s",
		status.Budget.StringFixed(2),
		status.Spent.StringFixed(2),
		status.Remaining.StringFixed(2),
		bar(status.Progress))

	if status.OverBudget {
		return overStyle.Render(line + "  OVER BUDGET")
	}
	return okStyle.Render(line)
}

// bar renders a fixed-width progress bar for a 0-100 percentage.
func bar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * barWidth)
	return barStyle.Render(strings.Repeat("█", filled)) +
		subtleStyle.Render(strings.Repeat("░", barWidth-filled))
}
