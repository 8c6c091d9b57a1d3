package budget

import (
	"errors"
	"strings"
)

var (
	ErrCycle              = errors.New("budget tree contains a cycle")
	ErrDuplicateCode      = errors.New("duplicate budget code")
	ErrNotFound           = errors.New("budget not found")
	ErrReservedCostCenter = errors.New("cost center name is reserved")
)

// Consolidated is the cost center stamped on nodes produced by Consolidate.
// It is never accepted as a partition name on save.
const Consolidated = "CONSOLIDATED"

// ItemType is the hierarchy role of an extracted line.
type ItemType string

const (
	ItemMacroStage ItemType = "MACRO_STAGE"
	ItemStage      ItemType = "STAGE"
	ItemSubStage   ItemType = "SUB_STAGE"
	ItemService    ItemType = "SERVICE"
)

// NodeType tells groups from payable items.
type NodeType string

const (
	NodeGroup NodeType = "GROUP"
	NodeItem  NodeType = "ITEM"
)

// ResourceKind is the material/service/equipment tag of a leaf item.
type ResourceKind string

const (
	ResourceMaterial  ResourceKind = "MT"
	ResourceService   ResourceKind = "ST"
	ResourceEquipment ResourceKind = "EQ"
)

// RawLine is one row extracted from a budget sheet.
type RawLine struct {
	Code               string
	Description        string
	Unit               string
	Quantity           float64
	UnitPrice          float64
	Total              float64
	OriginSheet        string
	SourceRow          int
	IsConstructionCost bool
}

// Line is a RawLine after hierarchy classification.
type Line struct {
	RawLine
	IsGroup  bool
	ItemType ItemType
}

// Node is a position in the cost breakdown tree. Children are owned by the
// parent; ParentID is a lookup-only back reference.
type Node struct {
	ID            string
	Code          string
	Description   string
	Level         int
	Type          NodeType
	ItemType      ItemType
	ResourceKind  ResourceKind
	Unit          string
	Quantity      float64
	UnitPrice     float64
	TotalValue    float64
	BudgetInitial float64
	BudgetCurrent float64
	OriginSheet   string
	CostCenter    string
	ParentID      string
	Children      []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// NewNode converts a classified line into a detached tree node.
func NewNode(l Line) *Node {
	n := &Node{
		Code:          l.Code,
		Description:   l.Description,
		Level:         Depth(l.Code),
		Type:          NodeItem,
		ItemType:      l.ItemType,
		Unit:          l.Unit,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		TotalValue:    l.Total,
		BudgetInitial: l.Total,
		BudgetCurrent: l.Total,
		OriginSheet:   l.OriginSheet,
	}

	if l.IsGroup {
		n.Type = NodeGroup
	}

	return n
}

// Depth is the number of dots in a code.
func Depth(code string) int {
	return strings.Count(code, ".")
}

// ParentCode returns the code before the last dot, or "" for a top-level code.
func ParentCode(code string) string {
	i := strings.LastIndex(code, ".")
	if i <= 0 {
		return ""
	}

	return code[:i]
}

// ResourceKindOf reads the resource tag from the last code segment.
func ResourceKindOf(code string) ResourceKind {
	seg := code
	if i := strings.LastIndex(code, "."); i >= 0 {
		seg = code[i+1:]
	}

	switch k := ResourceKind(strings.ToUpper(strings.TrimSpace(seg))); k {
	case ResourceMaterial, ResourceService, ResourceEquipment:
		return k
	default:
		return ""
	}
}
