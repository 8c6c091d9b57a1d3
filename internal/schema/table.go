package schema

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Role is the semantic meaning of a column.
type Role string

const (
	RoleCode        Role = "code"
	RoleDescription Role = "description"
	RoleUnit        Role = "unit"
	RoleQuantity    Role = "quantity"
	RoleUnitPrice   Role = "unit_price"
	RoleTotal       Role = "total"
	RoleDate        Role = "date"
	RoleTag         Role = "tag"
	RoleValue       Role = "value"
)

// Roles lists every known role in a stable order.
var Roles = []Role{
	RoleCode, RoleDescription, RoleUnit, RoleQuantity,
	RoleUnitPrice, RoleTotal, RoleDate, RoleTag, RoleValue,
}

// Rule holds the keywords that identify a role. A header cell matches when it
// hits any Contains/Exact/Prefix keyword and none of the Exclude keywords.
type Rule struct {
	Contains []string
	Exact    []string
	Prefix   []string
	Exclude  []string
}

// Table maps roles to their keyword rules. Keywords are compared after
// Normalize, so "Código" and "CODIGO" are equivalent.
type Table struct {
	rules map[Role]Rule
}

func NewTable(rules map[Role]Rule) Table {
	t := Table{rules: make(map[Role]Rule, len(rules))}

	for role, r := range rules {
		t.rules[role] = Rule{
			Contains: normalizeAll(r.Contains),
			Exact:    normalizeAll(r.Exact),
			Prefix:   normalizeAll(r.Prefix),
			Exclude:  normalizeAll(r.Exclude),
		}
	}

	return t
}

// Match returns every role whose rule matches an already normalized cell.
func (t Table) Match(cell string) []Role {
	var out []Role

	for _, role := range Roles {
		r, ok := t.rules[role]
		if !ok {
			continue
		}

		if r.matches(cell) {
			out = append(out, role)
		}
	}

	return out
}

func (r Rule) matches(cell string) bool {
	if ContainsAny(cell, r.Exclude) {
		return false
	}

	if slices.Contains(r.Exact, cell) {
		return true
	}

	for _, p := range r.Prefix {
		if strings.HasPrefix(cell, p) {
			return true
		}
	}

	return ContainsAny(cell, r.Contains)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize uppercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	// Transformer chains carry state and cannot be shared across goroutines.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}

	out = whitespaceRe.ReplaceAllString(strings.ToUpper(out), " ")

	return strings.TrimSpace(out)
}

// ContainsAny reports whether s contains any non-empty keyword.
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}

	return false
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}

	return out
}

// NormalizeAll normalizes a keyword list, dropping blanks.
func NormalizeAll(in []string) []string {
	return normalizeAll(in)
}
