package budget

import (
	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
)

type nodeResponse struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	Level         int                 `json:"level"`
	Type          budget.NodeType     `json:"type"`
	ItemType      budget.ItemType     `json:"item_type,omitempty"`
	ResourceKind  budget.ResourceKind `json:"resource_kind,omitempty"`
	Unit          string              `json:"unit,omitempty"`
	Quantity      float64             `json:"quantity"`
	UnitPrice     float64             `json:"unit_price"`
	TotalValue    float64             `json:"total_value"`
	BudgetInitial float64             `json:"budget_initial"`
	BudgetCurrent float64             `json:"budget_current"`
	OriginSheet   string              `json:"origin_sheet,omitempty"`
	CostCenter    string              `json:"cost_center,omitempty"`
	ParentID      string              `json:"parent_id,omitempty"`
	Children      []nodeResponse      `json:"children,omitempty"`
}

type sheetResponse struct {
	Name      string `json:"name"`
	HeaderRow int    `json:"header_row"`
	Lines     int    `json:"lines"`
	Skipped   bool   `json:"skipped"`
}

type reportResponse struct {
	Sheets              []sheetResponse    `json:"sheets"`
	Imported            int                `json:"imported"`
	GroundTruth         float64            `json:"ground_truth,omitempty"`
	GroundTruthSheet    string             `json:"ground_truth_sheet,omitempty"`
	GroundTruthStrategy reconcile.Strategy `json:"ground_truth_strategy,omitempty"`
	Correction          correctionResponse `json:"correction"`
	DroppedDuplicates   int                `json:"dropped_duplicates"`
	ExcludedDescendants int                `json:"excluded_descendants"`
	Failed              bool               `json:"failed"`
	Error               string             `json:"error,omitempty"`
}

type correctionResponse struct {
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Ratio    float64 `json:"ratio"`
	Applied  bool    `json:"applied"`
	Injected bool    `json:"injected"`
}

type treeResponse struct {
	CostCenter string         `json:"cost_center,omitempty"`
	Total      float64        `json:"total"`
	Nodes      []nodeResponse `json:"nodes"`
}

type importResponse struct {
	treeResponse
	Saved  bool           `json:"saved"`
	Report reportResponse `json:"report"`
}

func toNodeResponse(n *budget.Node) nodeResponse {
	resp := nodeResponse{
		ID:            n.ID,
		Code:          n.Code,
		Description:   n.Description,
		Level:         n.Level,
		Type:          n.Type,
		ItemType:      n.ItemType,
		ResourceKind:  n.ResourceKind,
		Unit:          n.Unit,
		Quantity:      n.Quantity,
		UnitPrice:     n.UnitPrice,
		TotalValue:    n.TotalValue,
		BudgetInitial: n.BudgetInitial,
		BudgetCurrent: n.BudgetCurrent,
		OriginSheet:   n.OriginSheet,
		CostCenter:    n.CostCenter,
		ParentID:      n.ParentID,
	}

	for _, c := range n.Children {
		resp.Children = append(resp.Children, toNodeResponse(c))
	}

	return resp
}

func toTreeResponse(costCenter string, roots []*budget.Node) treeResponse {
	nodes := make([]nodeResponse, len(roots))
	for i, r := range roots {
		nodes[i] = toNodeResponse(r)
	}

	return treeResponse{
		CostCenter: costCenter,
		Total:      budget.Total(roots),
		Nodes:      nodes,
	}
}

func toReportResponse(r importer.Report) reportResponse {
	sheets := make([]sheetResponse, len(r.Sheets))
	for i, s := range r.Sheets {
		sheets[i] = sheetResponse{Name: s.Name, HeaderRow: s.HeaderRow, Lines: s.Lines, Skipped: s.Skipped}
	}

	return reportResponse{
		Sheets:              sheets,
		Imported:            r.Imported(),
		GroundTruth:         r.GroundTruth.Value,
		GroundTruthSheet:    r.GroundTruth.Sheet,
		GroundTruthStrategy: r.GroundTruth.Strategy,
		Correction: correctionResponse{
			Before:   r.Correction.Before,
			After:    r.Correction.After,
			Ratio:    r.Correction.Ratio,
			Applied:  r.Correction.Applied,
			Injected: r.Correction.Injected,
		},
		DroppedDuplicates:   r.DroppedDuplicates,
		ExcludedDescendants: r.ExcludedDescendants,
		Failed:              r.Failed,
		Error:               r.Error,
	}
}
