package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/costree/internal/schema"
)

func budgetTable() schema.Table {
	return schema.NewTable(map[schema.Role]schema.Rule{
		schema.RoleCode:        {Contains: []string{"CÓDIGO", "CODE", "COD"}, Exact: []string{"ITEM", "ID"}},
		schema.RoleDescription: {Contains: []string{"DESCRIÇÃO", "DESCRIPTION", "SERVIÇO"}},
		schema.RoleUnit:        {Exact: []string{"UN", "UND", "UNIT"}},
		schema.RoleQuantity:    {Contains: []string{"QUANT", "QTD"}},
		schema.RoleUnitPrice:   {Contains: []string{"UNITÁRIO", "UNIT PRICE"}},
		schema.RoleTotal:       {Contains: []string{"TOTAL", "VALOR"}, Exclude: []string{"UNIT"}},
	})
}

var budgetReq = schema.Requirement{
	All: []schema.Role{schema.RoleDescription},
	Any: []schema.Role{schema.RoleTotal, schema.RoleCode, schema.RoleUnitPrice},
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Código", want: "CODIGO"},
		{in: "  descrição   do  serviço ", want: "DESCRICAO DO SERVICO"},
		{in: "AÇO", want: "ACO"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Normalize(tt.in))
		})
	}
}

func TestSniff(t *testing.T) {
	type testCase struct {
		name     string
		rows     [][]string
		wantOK   bool
		wantRow  int
		wantCols map[schema.Role]int
	}

	tests := []testCase{
		{
			name: "header on first row",
			rows: [][]string{
				{"CÓDIGO", "DESCRIÇÃO", "TOTAL"},
				{"01", "ESTRUTURA", ""},
			},
			wantOK:  true,
			wantRow: 0,
			wantCols: map[schema.Role]int{
				schema.RoleCode:        0,
				schema.RoleDescription: 1,
				schema.RoleTotal:       2,
			},
		},
		{
			name: "header below a title block",
			rows: [][]string{
				{"OBRA RESIDENCIAL"},
				{"", ""},
				{"Item", "Descrição do serviço", "Un", "Quant.", "Preço unitário", "Valor total"},
			},
			wantOK:  true,
			wantRow: 2,
			wantCols: map[schema.Role]int{
				schema.RoleCode:        0,
				schema.RoleDescription: 1,
				schema.RoleUnit:        2,
				schema.RoleQuantity:    3,
				schema.RoleTotal:       5,
			},
		},
		{
			name: "last matching cell wins",
			rows: [][]string{
				{"DESCRIÇÃO", "TOTAL MATERIAL", "TOTAL GERAL"},
			},
			wantOK:  true,
			wantRow: 0,
			wantCols: map[schema.Role]int{
				schema.RoleDescription: 0,
				schema.RoleTotal:       2,
			},
		},
		{
			name: "description alone is not enough",
			rows: [][]string{
				{"DESCRIÇÃO", "OBS"},
			},
			wantOK: false,
		},
		{
			name: "no recognizable header",
			rows: [][]string{
				{"foo", "bar"},
				{"1", "2"},
				{"3", "4"},
			},
			wantOK: false,
		},
		{
			name:   "empty grid",
			rows:   nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := schema.Sniff(tt.rows, budgetTable(), budgetReq, schema.DefaultMaxRows)

			require.Equal(t, tt.wantOK, ok)

			if !tt.wantOK {
				assert.Equal(t, -1, got.Row)
				return
			}

			assert.Equal(t, tt.wantRow, got.Row)

			for role, col := range tt.wantCols {
				idx, found := got.Column(role)
				require.True(t, found, "role %s", role)
				assert.Equal(t, col, idx, "role %s", role)
			}
		})
	}
}

func TestSniff_ScanDepth(t *testing.T) {
	rows := make([][]string, 0, 12)
	for range 10 {
		rows = append(rows, []string{"lorem", "ipsum"})
	}

	rows = append(rows, []string{"CÓDIGO", "DESCRIÇÃO", "TOTAL"})

	_, ok := schema.Sniff(rows, budgetTable(), budgetReq, 5)
	assert.False(t, ok)

	h, ok := schema.Sniff(rows, budgetTable(), budgetReq, 50)
	assert.True(t, ok)
	assert.Equal(t, 10, h.Row)
}

func TestTable_Match(t *testing.T) {
	table := budgetTable()

	assert.ElementsMatch(t, []schema.Role{schema.RoleUnitPrice}, table.Match(schema.Normalize("Preço Unitário Total")))
	assert.ElementsMatch(t, []schema.Role{schema.RoleCode}, table.Match("ID"))
	assert.Empty(t, table.Match("IDADE"))
}
