package schema

import (
	"github.com/MrJamesThe3rd/costree/internal/money"
)

// DefaultMaxRows is how deep into a sheet the header search goes.
const DefaultMaxRows = 50

// Requirement is the minimum role set a row must carry to be accepted as a
// header: every role in All and at least one role in Any (when Any is set).
type Requirement struct {
	All []Role
	Any []Role
}

func (req Requirement) satisfied(cols map[Role]int) bool {
	for _, r := range req.All {
		if _, ok := cols[r]; !ok {
			return false
		}
	}

	if len(req.Any) == 0 {
		return true
	}

	for _, r := range req.Any {
		if _, ok := cols[r]; ok {
			return true
		}
	}

	return false
}

// Header is the detected header row and its role to column mapping.
type Header struct {
	Row     int
	Columns map[Role]int
}

// Column returns the column index for a role.
func (h Header) Column(r Role) (int, bool) {
	idx, ok := h.Columns[r]
	return idx, ok
}

// Sniff scans at most maxRows rows for the first row satisfying req.
//
// Within a row, role resolution is last writer wins: when several cells match
// the same role, the right-most one is kept. Cells that read as a number are
// never header text.
func Sniff(rows [][]string, t Table, req Requirement, maxRows int) (Header, bool) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	limit := min(maxRows, len(rows))

	for i := 0; i < limit; i++ {
		cols := make(map[Role]int)

		for j, cell := range rows[i] {
			n := Normalize(cell)
			if n == "" || money.Parse(cell) != 0 {
				continue
			}

			for _, role := range t.Match(n) {
				cols[role] = j
			}
		}

		if len(cols) > 0 && req.satisfied(cols) {
			return Header{Row: i, Columns: cols}, true
		}
	}

	return Header{Row: -1}, false
}
