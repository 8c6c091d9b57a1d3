package progress

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/money"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
)

// Item is one progress entry of a recurring export. The same logical item
// reappears in every snapshot with a non-decreasing accumulated value.
type Item struct {
	ID                 uuid.UUID
	ServiceDescription string
	AccumulatedValue   float64
	BudgetGroupCode    string
	Date               time.Time
	IsIndirectCost     bool
	OriginalBudgetID   string
	OriginSheet        string
	SourceRow          int
	CostCenter         string
}

// Key is the deduplication key. Items without a budget code are keyed by id
// and never merge with each other.
func (i Item) Key() string {
	if i.BudgetGroupCode != "" {
		return i.BudgetGroupCode + "-" + i.ServiceDescription
	}

	return i.ID.String()
}

// Dedupe keeps one item per key, the one with the largest accumulated value.
// Ties keep the earliest item; output follows first-seen key order.
func Dedupe(items []Item) []Item {
	index := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))

	for _, it := range items {
		k := it.Key()

		pos, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, it)

			continue
		}

		if it.AccumulatedValue > out[pos].AccumulatedValue {
			out[pos] = it
		}
	}

	return out
}

// Sum adds every accumulated value.
func Sum(items []Item) float64 {
	values := make([]float64, len(items))
	for i, it := range items {
		values[i] = it.AccumulatedValue
	}

	return money.Sum(values...)
}

// Correct rescales accumulated values so they add up to a realized total
// found in the workbook.
func Correct(items []Item, ground reconcile.Finding, opts reconcile.Options) ([]Item, reconcile.Correction) {
	before := Sum(items)
	c := reconcile.Correction{Before: before, After: before, Ratio: 1}

	if !ground.Found(opts.Threshold) {
		return items, c
	}

	ratio, ok := reconcile.Ratio(ground.Value, before, opts.Tolerance)
	if !ok {
		return items, c
	}

	out := make([]Item, len(items))
	for i, it := range items {
		it.AccumulatedValue = money.Scale(it.AccumulatedValue, ratio)
		out[i] = it
	}

	c.After = Sum(out)
	c.Ratio = ratio
	c.Applied = true

	return out, c
}

// Link sets OriginalBudgetID on items whose budget code matches a node code,
// exactly or after trimming.
func Link(items []Item, roots []*budget.Node) []Item {
	exact := make(map[string]string)
	trimmed := make(map[string]string)

	for _, n := range budget.Flatten(roots) {
		if _, ok := exact[n.Code]; !ok {
			exact[n.Code] = n.ID
		}

		t := strings.TrimSpace(n.Code)
		if _, ok := trimmed[t]; !ok {
			trimmed[t] = n.ID
		}
	}

	out := make([]Item, len(items))

	for i, it := range items {
		if it.BudgetGroupCode != "" {
			if id, ok := exact[it.BudgetGroupCode]; ok {
				it.OriginalBudgetID = id
			} else if id, ok := trimmed[strings.TrimSpace(it.BudgetGroupCode)]; ok {
				it.OriginalBudgetID = id
			}
		}

		out[i] = it
	}

	return out
}
