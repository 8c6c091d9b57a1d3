package budget

import (
	"cmp"
	"strings"
)

const otherRank = 99

var resourceRank = map[string]int{
	string(ResourceMaterial):  1,
	string(ResourceService):   2,
	string(ResourceEquipment): 3,
}

// CompareCodes orders cost codes segment by segment. Resource tags sort
// MT < ST < EQ < anything else, other segments compare numeric-aware
// ("2" < "10"), and a code sorts before its own extensions. Codes that only
// differ in case or padding fall back to a raw string comparison, so the
// result is a strict total order.
func CompareCodes(a, b string) int {
	as, bs := segments(a), segments(b)

	for i := range min(len(as), len(bs)) {
		x, y := as[i], bs[i]
		if x == y {
			continue
		}

		_, xTag := resourceRank[x]
		_, yTag := resourceRank[y]

		if xTag || yTag {
			if c := cmp.Compare(rank(x), rank(y)); c != 0 {
				return c
			}
		}

		return compareNatural(x, y)
	}

	if c := cmp.Compare(len(as), len(bs)); c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

func segments(code string) []string {
	parts := strings.Split(code, ".")
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}

	return parts
}

func rank(seg string) int {
	if r, ok := resourceRank[seg]; ok {
		return r
	}

	return otherRank
}

// compareNatural compares digit runs by value and text runs lexically, with
// digit runs sorting before text runs.
func compareNatural(x, y string) int {
	xc, yc := chunks(x), chunks(y)

	for i := range min(len(xc), len(yc)) {
		a, b := xc[i], yc[i]
		aNum, bNum := isDigits(a), isDigits(b)

		switch {
		case aNum && bNum:
			if c := compareDigits(a, b); c != 0 {
				return c
			}
		case aNum:
			return -1
		case bNum:
			return 1
		default:
			if c := strings.Compare(a, b); c != 0 {
				return c
			}
		}
	}

	if c := cmp.Compare(len(xc), len(yc)); c != 0 {
		return c
	}

	return strings.Compare(x, y)
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

func chunks(s string) []string {
	var out []string

	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != isDigit(s[i-1]) {
			out = append(out, s[start:i])
			start = i
		}
	}

	if start < len(s) {
		out = append(out, s[start:])
	}

	return out
}

func isDigits(s string) bool {
	for i := range len(s) {
		if !isDigit(s[i]) {
			return false
		}
	}

	return s != ""
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
