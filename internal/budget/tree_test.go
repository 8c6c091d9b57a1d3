package budget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/money"
)

func TestClassify(t *testing.T) {
	lines := []budget.RawLine{
		{Code: "01", Description: "ESTRUTURA"},
		{Code: "01.01", Description: "FUNDACAO"},
		{Code: "01.01.01", Description: "ESTACAS", Total: 500},
		{Code: "01.02", Description: "CONCRETO", Total: 1000},
		{Code: "02", Description: "INSTALACOES", Total: 5000},
		{Code: "02.01", Description: "CABOS", Total: 100},
		{Code: "03", Description: "PINTURA", Total: 800},
		{Code: "03.01", Description: "PAREDES", Total: 800},
	}

	got := budget.Classify(lines, budget.DefaultGroupLeafRatio)
	require.Len(t, got, len(lines))

	byCode := make(map[string]budget.Line, len(got))
	for _, l := range got {
		byCode[l.Code] = l
	}

	tests := []struct {
		code      string
		wantGroup bool
		wantType  budget.ItemType
	}{
		{code: "01", wantGroup: true, wantType: budget.ItemMacroStage},
		{code: "01.01", wantGroup: true, wantType: budget.ItemStage},
		{code: "01.01.01", wantGroup: false, wantType: budget.ItemService},
		{code: "01.02", wantGroup: false, wantType: budget.ItemService},
		// children sum 100 < 10% of 5000: payable line masquerading as group
		{code: "02", wantGroup: false, wantType: budget.ItemService},
		{code: "02.01", wantGroup: false, wantType: budget.ItemService},
		{code: "03", wantGroup: true, wantType: budget.ItemMacroStage},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			l := byCode[tt.code]
			assert.Equal(t, tt.wantGroup, l.IsGroup)
			assert.Equal(t, tt.wantType, l.ItemType)
		})
	}
}

func TestClassify_SubStage(t *testing.T) {
	got := budget.Classify([]budget.RawLine{
		{Code: "01.01.01"},
		{Code: "01.01.01.01", Total: 10},
	}, budget.DefaultGroupLeafRatio)

	assert.True(t, got[0].IsGroup)
	assert.Equal(t, budget.ItemSubStage, got[0].ItemType)
}

func nodes(values map[string]float64, codes ...string) []*budget.Node {
	out := make([]*budget.Node, 0, len(codes))
	for _, c := range codes {
		out = append(out, &budget.Node{Code: c, Type: budget.NodeItem, TotalValue: values[c]})
	}

	return out
}

func assertTotals(t *testing.T, level []*budget.Node) {
	t.Helper()

	for _, n := range level {
		if n.IsLeaf() {
			continue
		}

		values := make([]float64, 0, len(n.Children))
		for _, c := range n.Children {
			values = append(values, c.TotalValue)
		}

		assert.Equal(t, money.Sum(values...), n.TotalValue, "group %s", n.Code)
		assert.Equal(t, n.TotalValue, n.BudgetInitial)
		assert.Equal(t, n.TotalValue, n.BudgetCurrent)
		assertTotals(t, n.Children)
	}
}

func TestBuild(t *testing.T) {
	values := map[string]float64{
		"01.02.MT": 10.1, "01.02.ST": 20.2, "01.02.EQ": 30.3,
		"01.10": 5, "01.2": 7.45, "02": 99.99,
	}

	roots, err := budget.Build(nodes(values,
		"02", "01.02.EQ", "01.10", "01", "01.02", "01.02.MT", "01.2", "01.02.ST",
	))
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, "01", roots[0].Code)
	assert.Equal(t, "02", roots[1].Code)
	assert.Equal(t, budget.NodeGroup, roots[0].Type)
	assert.Equal(t, budget.NodeItem, roots[1].Type)
	assert.Empty(t, roots[0].ParentID)

	var childCodes []string
	for _, c := range roots[0].Children {
		childCodes = append(childCodes, c.Code)
		assert.Equal(t, roots[0].ID, c.ParentID)
	}

	assert.Equal(t, []string{"01.02", "01.2", "01.10"}, childCodes)

	res := roots[0].Children[0].Children
	require.Len(t, res, 3)
	assert.Equal(t, budget.ResourceMaterial, res[0].ResourceKind)
	assert.Equal(t, budget.ResourceService, res[1].ResourceKind)
	assert.Equal(t, budget.ResourceEquipment, res[2].ResourceKind)
	assert.Equal(t, 2, res[0].Level)
	assert.Empty(t, roots[0].Children[0].ResourceKind)

	assert.Equal(t, 60.6, roots[0].Children[0].TotalValue)
	assert.Equal(t, 73.05, roots[0].TotalValue)
	assertTotals(t, roots)
	assert.Equal(t, 173.04, budget.Total(roots))
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	roots, err := budget.Build(nodes(map[string]float64{"05.01.03": 1}, "05.01.03", "07"))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "05.01.03", roots[0].Code)
}

func TestBuild_DuplicateCode(t *testing.T) {
	_, err := budget.Build(nodes(nil, "01", "01.01", "01"))
	assert.ErrorIs(t, err, budget.ErrDuplicateCode)
}

func TestRecompute_Cycle(t *testing.T) {
	a := &budget.Node{Code: "A"}
	b := &budget.Node{Code: "A.1"}
	a.Children = []*budget.Node{b}
	b.Children = []*budget.Node{a}

	assert.ErrorIs(t, budget.Recompute([]*budget.Node{a}), budget.ErrCycle)
}

func TestRecompute_SharedChild(t *testing.T) {
	shared := &budget.Node{Code: "01.01", TotalValue: 1}
	a := &budget.Node{Code: "01", Children: []*budget.Node{shared}}
	b := &budget.Node{Code: "02", Children: []*budget.Node{shared}}

	assert.ErrorIs(t, budget.Recompute([]*budget.Node{a, b}), budget.ErrCycle)
}

func TestFlatten(t *testing.T) {
	roots, err := budget.Build(nodes(map[string]float64{"01.01": 1, "01.02": 2, "02": 3},
		"01.02", "02", "01", "01.01"))
	require.NoError(t, err)

	var codes []string
	for _, n := range budget.Flatten(roots) {
		codes = append(codes, n.Code)
	}

	assert.Equal(t, []string{"01", "01.01", "01.02", "02"}, codes)
}

func TestConsolidate(t *testing.T) {
	build := func(cc string, v1, v2 float64) []*budget.Node {
		ns := nodes(map[string]float64{"01.01": v1, "01.02": v2}, "01", "01.01", "01.02")
		for _, n := range ns {
			n.CostCenter = cc
			n.BudgetInitial = n.TotalValue
			n.BudgetCurrent = n.TotalValue
		}

		roots, err := budget.Build(ns)
		require.NoError(t, err)

		return roots
	}

	blockA := build("A", 0.1, 1000)
	blockB := build("B", 0.2, 500.55)

	got, err := budget.Consolidate(blockA, blockB)
	require.NoError(t, err)
	require.Len(t, got, 1)

	root := got[0]
	assert.Equal(t, "consolidated-01", root.ID)
	assert.Equal(t, budget.Consolidated, root.CostCenter)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 0.3, root.Children[0].TotalValue)
	assert.Equal(t, 0.3, root.Children[0].BudgetInitial)
	assert.Equal(t, 1500.55, root.Children[1].TotalValue)
	assert.Equal(t, 1500.85, root.TotalValue)
	assert.Equal(t, "consolidated-01", root.Children[0].ParentID)
	assertTotals(t, got)

	// inputs are untouched
	assert.Equal(t, "A", blockA[0].CostCenter)
	assert.Equal(t, 1000.1, blockA[0].TotalValue)
}

func TestConsolidate_SelfDoubles(t *testing.T) {
	tree, err := budget.Build(nodes(map[string]float64{"01.01": 12.34, "01.02.MT": 5, "02": 7.5},
		"01", "01.01", "01.02", "01.02.MT", "02"))
	require.NoError(t, err)

	once, err := budget.Consolidate(tree)
	require.NoError(t, err)

	twice, err := budget.Consolidate(tree, tree)
	require.NoError(t, err)

	a, b := budget.Flatten(once), budget.Flatten(twice)
	require.Len(t, b, len(a))

	for i := range a {
		assert.Equal(t, a[i].Code, b[i].Code)
		assert.Equal(t, a[i].Level, b[i].Level)
		assert.Equal(t, len(a[i].Children), len(b[i].Children))
		assert.Equal(t, money.Round2(a[i].TotalValue*2), b[i].TotalValue, a[i].Code)
	}
}
