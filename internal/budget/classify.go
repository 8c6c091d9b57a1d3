package budget

// DefaultGroupLeafRatio is the children-sum share below which a group row that
// carries its own total is treated as a payable leaf.
const DefaultGroupLeafRatio = 0.10

// Classify marks every line as a group or a leaf and assigns its ItemType.
// It needs the complete line set of a document.
//
// A line with descendants stays a group unless it has a positive total and the
// sum of its direct children is below ratio times that total.
func Classify(lines []RawLine, ratio float64) []Line {
	hasChildren := make(map[string]bool, len(lines))
	childSum := make(map[string]float64, len(lines))

	for _, l := range lines {
		if l.Code == "" {
			continue
		}

		parent := ParentCode(l.Code)
		if parent != "" {
			childSum[parent] += l.Total
		}

		for p := parent; p != ""; p = ParentCode(p) {
			hasChildren[p] = true
		}
	}

	out := make([]Line, len(lines))

	for i, l := range lines {
		group := hasChildren[l.Code]
		if group && l.Total > 0 && childSum[l.Code] < ratio*l.Total {
			group = false
		}

		out[i] = Line{RawLine: l, IsGroup: group, ItemType: itemType(l.Code, group)}
	}

	return out
}

func itemType(code string, group bool) ItemType {
	if !group {
		return ItemService
	}

	switch Depth(code) {
	case 0:
		return ItemMacroStage
	case 1:
		return ItemStage
	default:
		return ItemSubStage
	}
}
