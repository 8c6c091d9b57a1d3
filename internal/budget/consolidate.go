package budget

import (
	"github.com/MrJamesThe3rd/costree/internal/money"
)

// Consolidate merges partition trees into one by summing the values of nodes
// that share a code, then rebuilds the hierarchy from the merged set.
// The inputs are not modified.
func Consolidate(trees ...[]*Node) ([]*Node, error) {
	merged := make(map[string]*Node)

	var order []*Node

	for _, roots := range trees {
		for _, n := range Flatten(roots) {
			m, ok := merged[n.Code]
			if !ok {
				clone := *n
				clone.ID = "consolidated-" + n.Code
				clone.CostCenter = Consolidated
				clone.ParentID = ""
				clone.Children = nil

				merged[n.Code] = &clone
				order = append(order, &clone)

				continue
			}

			m.TotalValue = money.Add(m.TotalValue, n.TotalValue)
			m.BudgetInitial = money.Add(m.BudgetInitial, n.BudgetInitial)
			m.BudgetCurrent = money.Add(m.BudgetCurrent, n.BudgetCurrent)
		}
	}

	return Build(order)
}
