package budget

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/costree/internal/money"
)

// Build links a flat node set into a forest by dot-delimited code prefix.
// A node whose parent code is absent becomes a root. Siblings are sorted with
// CompareCodes and group totals are recomputed bottom-up.
func Build(nodes []*Node) ([]*Node, error) {
	byCode := make(map[string]*Node, len(nodes))

	for _, n := range nodes {
		if _, dup := byCode[n.Code]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCode, n.Code)
		}

		byCode[n.Code] = n
		n.Children = nil

		if n.ID == "" {
			n.ID = uuid.NewString()
		}
	}

	var roots []*Node

	for _, n := range nodes {
		n.Level = Depth(n.Code)

		parent, ok := byCode[ParentCode(n.Code)]
		if !ok || parent == n {
			n.ParentID = ""
			roots = append(roots, n)

			continue
		}

		parent.Children = append(parent.Children, n)
		parent.Type = NodeGroup
		n.ParentID = parent.ID
	}

	for _, n := range nodes {
		if n.IsLeaf() {
			if n.ResourceKind == "" {
				n.ResourceKind = ResourceKindOf(n.Code)
			}

			if n.Type == "" {
				n.Type = NodeItem
			}

			continue
		}

		n.ResourceKind = ""
	}

	if err := sortTree(roots, make(map[*Node]bool, len(nodes))); err != nil {
		return nil, err
	}

	if err := Recompute(roots); err != nil {
		return nil, err
	}

	return roots, nil
}

func sortTree(level []*Node, seen map[*Node]bool) error {
	slices.SortStableFunc(level, func(a, b *Node) int {
		return CompareCodes(a.Code, b.Code)
	})

	for _, n := range level {
		if seen[n] {
			return fmt.Errorf("%w: at %q", ErrCycle, n.Code)
		}

		seen[n] = true

		if err := sortTree(n.Children, seen); err != nil {
			return err
		}
	}

	return nil
}

// Recompute sets every group's total, initial and current budget to the sum of
// its children, bottom-up. A node reached twice fails with ErrCycle.
func Recompute(roots []*Node) error {
	seen := make(map[*Node]bool)

	for _, r := range roots {
		if _, err := recompute(r, seen); err != nil {
			return err
		}
	}

	return nil
}

func recompute(n *Node, seen map[*Node]bool) (float64, error) {
	if seen[n] {
		return 0, fmt.Errorf("%w: at %q", ErrCycle, n.Code)
	}

	seen[n] = true

	if n.IsLeaf() {
		return n.TotalValue, nil
	}

	values := make([]float64, 0, len(n.Children))

	for _, c := range n.Children {
		v, err := recompute(c, seen)
		if err != nil {
			return 0, err
		}

		values = append(values, v)
	}

	total := money.Sum(values...)
	n.TotalValue = total
	n.BudgetInitial = total
	n.BudgetCurrent = total

	return total, nil
}

// Flatten walks the forest in preorder. Nodes already visited are skipped.
func Flatten(roots []*Node) []*Node {
	var out []*Node

	seen := make(map[*Node]bool)

	var walk func(level []*Node)
	walk = func(level []*Node) {
		for _, n := range level {
			if seen[n] {
				continue
			}

			seen[n] = true
			out = append(out, n)
			walk(n.Children)
		}
	}

	walk(roots)

	return out
}

// Total sums the root totals of a forest.
func Total(roots []*Node) float64 {
	values := make([]float64, len(roots))
	for i, r := range roots {
		values[i] = r.TotalValue
	}

	return money.Sum(values...)
}
