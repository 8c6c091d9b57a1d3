package money

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var currencyPrefixes = []string{"R$", "US$", "$", "€"}

// Parse normalizes a raw cell value into a monetary amount.
// Both decimal-comma ("1.234,56") and decimal-point ("1,234.56") layouts are
// accepted. Anything unparseable yields 0; Parse never panics.
func Parse(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case decimal.Decimal:
		return finite(v.InexactFloat64())
	case string:
		return parseString(v)
	case []byte:
		return parseString(string(v))
	default:
		return 0
	}
}

func parseString(s string) float64 {
	clean := strings.TrimSpace(s)
	for _, p := range currencyPrefixes {
		if rest, ok := strings.CutPrefix(clean, p); ok {
			clean = rest
			break
		}
	}

	clean = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, clean)

	if clean == "" {
		return 0
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")

	switch {
	case lastComma == -1 && lastDot == -1:
		// plain integer
	case lastComma == -1 && strings.Count(clean, ".") > 1:
		// "43.000.000": dots are thousands separators
		clean = strings.ReplaceAll(clean, ".", "")
	case lastDot == -1 && strings.Count(clean, ",") > 1:
		// "1,234,567": commas are thousands separators
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		f, ferr := strconv.ParseFloat(clean, 64)
		if ferr != nil {
			return 0
		}

		return finite(f)
	}

	return finite(d.InexactFloat64())
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return f
}

// dec converts f for arithmetic; non-finite values count as zero.
func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(f))
}

// Round2 rounds to currency precision (2 decimals, half away from zero).
func Round2(f float64) float64 {
	return finite(dec(f).Round(2).InexactFloat64())
}

// Add returns a+b rounded to 2 decimals.
func Add(a, b float64) float64 {
	return finite(dec(a).Add(dec(b)).Round(2).InexactFloat64())
}

// Sum adds the values exactly and rounds the result once.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(dec(v))
	}

	return finite(total.Round(2).InexactFloat64())
}

// Scale multiplies v by ratio and rounds to 2 decimals.
func Scale(v, ratio float64) float64 {
	return finite(dec(v).Mul(dec(ratio)).Round(2).InexactFloat64())
}
