package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/progress"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	leafStyle   = lipgloss.NewStyle()
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).MarginRight(1)
)

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func nodeLabel(n *budget.Node) string {
	label := fmt.Sprintf("%s  %s  %s", n.Code, n.Description, formatAmount(n.TotalValue))
	if n.ResourceKind != "" {
		label += " " + mutedStyle.Render("["+string(n.ResourceKind)+"]")
	}

	if n.IsLeaf() {
		return leafStyle.Render(label)
	}

	return groupStyle.Render(label)
}

func subtree(n *budget.Node) *tree.Tree {
	t := tree.Root(nodeLabel(n))

	for _, c := range n.Children {
		if c.IsLeaf() {
			t.Child(nodeLabel(c))
			continue
		}

		t.Child(subtree(c))
	}

	return t
}

// renderTree draws the forest under a header carrying the grand total.
func renderTree(title string, roots []*budget.Node) string {
	t := tree.Root(titleStyle.Render(fmt.Sprintf("%s  %s", title, formatAmount(budget.Total(roots))))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(branchStyle)

	for _, r := range roots {
		if r.IsLeaf() {
			t.Child(nodeLabel(r))
			continue
		}

		t.Child(subtree(r))
	}

	return t.String()
}

// renderReport summarizes an import run.
func renderReport(r importer.Report) string {
	if r.Failed {
		return errorStyle.Render("Import failed: " + r.Error)
	}

	var sb strings.Builder

	for _, s := range r.Sheets {
		if s.Skipped {
			sb.WriteString(warnStyle.Render(fmt.Sprintf("* %s | skipped, no header found", s.Name)))
			sb.WriteString("\n")

			continue
		}

		sb.WriteString(fmt.Sprintf("* %s | header row %d | %d lines\n", s.Name, s.HeaderRow+1, s.Lines))
	}

	if r.GroundTruth.Value > 0 {
		sb.WriteString(fmt.Sprintf("Ground truth: %s (%s, %s)\n",
			formatAmount(r.GroundTruth.Value), r.GroundTruth.Sheet, r.GroundTruth.Strategy))
	}

	c := r.Correction

	switch {
	case c.Injected:
		sb.WriteString(fmt.Sprintf("No line carried value, injected a global line of %s\n", formatAmount(c.After)))
	case c.Applied:
		sb.WriteString(fmt.Sprintf("Rescaled %s -> %s (ratio %.6f)\n", formatAmount(c.Before), formatAmount(c.After), c.Ratio))
	}

	if r.DroppedDuplicates > 0 {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("Dropped %d duplicate codes", r.DroppedDuplicates)))
		sb.WriteString("\n")
	}

	if r.ExcludedDescendants > 0 {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("Excluded %d lines below payable groups", r.ExcludedDescendants)))
		sb.WriteString("\n")
	}

	if r.Merged > 0 {
		sb.WriteString(fmt.Sprintf("Merged %d snapshot rows\n", r.Merged))
	}

	if r.Suggested > 0 {
		sb.WriteString(fmt.Sprintf("Suggested %d budget codes\n", r.Suggested))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderItems lays progress items out as a table with a total footer.
func renderItems(items []progress.Item) string {
	rows := make([][]string, 0, len(items)+1)

	for _, it := range items {
		date := ""
		if !it.Date.IsZero() {
			date = it.Date.Format("2006-01-02")
		}

		kind := "direct"
		if it.IsIndirectCost {
			kind = "indirect"
		}

		rows = append(rows, []string{it.BudgetGroupCode, it.ServiceDescription, date, kind, formatAmount(it.AccumulatedValue)})
	}

	rows = append(rows, []string{"", "TOTAL", "", "", formatAmount(progress.Sum(items))})

	last := len(rows) - 1

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Code", "Service", "Date", "Kind", "Accumulated").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow, last:
				return titleStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		String()
}
