package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/costree/internal/budget"
)

const sheetName = "Orçamento"

var header = []any{
	"Código", "Descrição", "Nível", "Tipo", "Recurso", "Unidade", "Quantidade", "Preço unitário", "Total",
}

// Trees loads stored budget trees.
type Trees interface {
	Tree(ctx context.Context, costCenter string) ([]*budget.Node, error)
	Consolidated(ctx context.Context, costCenters []string) ([]*budget.Node, error)
}

// Service writes stored budgets back to spreadsheets.
type Service struct {
	trees Trees
}

func NewService(trees Trees) *Service {
	return &Service{trees: trees}
}

// Export writes the tree of costCenter to w. The reserved consolidated name
// exports every cost center merged.
func (s *Service) Export(ctx context.Context, costCenter string, w io.Writer) error {
	var (
		roots []*budget.Node
		err   error
	)

	if strings.EqualFold(costCenter, budget.Consolidated) {
		roots, err = s.trees.Consolidated(ctx, nil)
	} else {
		roots, err = s.trees.Tree(ctx, costCenter)
	}

	if err != nil {
		return fmt.Errorf("loading budget tree: %w", err)
	}

	return WriteBudget(w, roots)
}

// Rows flattens the forest in preorder into spreadsheet rows, header first and
// a grand total last.
func Rows(roots []*budget.Node) [][]any {
	nodes := budget.Flatten(roots)

	rows := make([][]any, 0, len(nodes)+2)
	rows = append(rows, header)

	for _, n := range nodes {
		rows = append(rows, []any{
			n.Code,
			strings.Repeat("  ", n.Level) + n.Description,
			n.Level,
			string(n.Type),
			string(n.ResourceKind),
			n.Unit,
			n.Quantity,
			n.UnitPrice,
			n.TotalValue,
		})
	}

	rows = append(rows, []any{"", "TOTAL GERAL", "", "", "", "", "", "", budget.Total(roots)})

	return rows
}

// WriteBudget renders roots as a single-sheet xlsx workbook.
func WriteBudget(w io.Writer, roots []*budget.Node) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating number style: %w", err)
	}

	total, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating total style: %w", err)
	}

	rows := Rows(roots)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+1, err)
		}

		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	last := len(rows)

	if err := f.SetCellStyle(sheetName, "A1", "I1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	if err := f.SetCellStyle(sheetName, "H2", fmt.Sprintf("I%d", last), amount); err != nil {
		return fmt.Errorf("styling amounts: %w", err)
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", last), fmt.Sprintf("I%d", last), total); err != nil {
		return fmt.Errorf("styling total: %w", err)
	}

	if err := f.SetColWidth(sheetName, "B", "B", 60); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
