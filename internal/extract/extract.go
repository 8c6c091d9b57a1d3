package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/money"
	"github.com/MrJamesThe3rd/costree/internal/schema"
	"github.com/MrJamesThe3rd/costree/internal/workbook"
)

// DefaultNoiseThreshold is the smallest value the last-resort total scan accepts.
const DefaultNoiseThreshold = 100

// Options tunes line extraction. Keyword lists are matched against
// schema.Normalize output.
type Options struct {
	SummarySheetKeywords []string
	SkipCodeKeywords     []string
	IndirectKeywords     []string
	NoiseThreshold       float64
}

// DefaultOptions returns Portuguese and English keyword defaults.
func DefaultOptions() Options {
	return Options{
		SummarySheetKeywords: []string{"SUMMARY", "VIABILITY", "RESUMO", "VIABILIDADE"},
		SkipCodeKeywords:     []string{"TOTAL", "SUMMARY", "RESUMO"},
		IndirectKeywords: []string{
			"ADMINISTRA", "BDI", "TAXA", "IMPOSTO", "SEGURO", "ENCARGO",
			"INDIRET", "OVERHEAD", "TAX", "INSURANCE", "FEE",
		},
		NoiseThreshold: DefaultNoiseThreshold,
	}
}

// IsSummarySheet reports whether a sheet name carries a summary keyword.
func IsSummarySheet(name string, keywords []string) bool {
	return schema.ContainsAny(schema.Normalize(name), schema.NormalizeAll(keywords))
}

// Lines walks the rows below header and returns one line per kept row.
// Missing columns leave their fields at defaults.
func Lines(sheet workbook.Sheet, header schema.Header, opts Options) []budget.RawLine {
	var (
		summary  = IsSummarySheet(sheet.Name, opts.SummarySheetKeywords)
		skip     = schema.NormalizeAll(opts.SkipCodeKeywords)
		indirect = schema.NormalizeAll(opts.IndirectKeywords)
		r        = rowReader{header: header}
		out      []budget.RawLine
	)

	for i := header.Row + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if isBlank(row) {
			continue
		}

		code := strings.TrimSpace(r.text(row, schema.RoleCode))
		if code == "" {
			if !summary {
				continue
			}

			code = fmt.Sprintf("SUM-%d", i+1)
		}

		if schema.ContainsAny(schema.Normalize(code), skip) {
			continue
		}

		line := budget.RawLine{
			Code:        code,
			Description: strings.TrimSpace(r.text(row, schema.RoleDescription)),
			Unit:        strings.TrimSpace(r.text(row, schema.RoleUnit)),
			Quantity:    1,
			OriginSheet: sheet.Name,
			SourceRow:   i + 1,
		}

		_, hasQty := header.Column(schema.RoleQuantity)
		_, hasPrice := header.Column(schema.RoleUnitPrice)

		if q := money.Parse(r.text(row, schema.RoleQuantity)); q != 0 {
			line.Quantity = q
		}

		line.UnitPrice = money.Parse(r.text(row, schema.RoleUnitPrice))
		line.Total = money.Parse(r.text(row, schema.RoleTotal))

		if line.Total == 0 && hasQty && hasPrice {
			line.Total = money.Scale(line.UnitPrice, line.Quantity)
		}

		if line.Total == 0 {
			line.Total = r.largest(row, opts.NoiseThreshold)
		}

		if line.UnitPrice == 0 && line.Total != 0 {
			line.UnitPrice = money.Round2(line.Total / line.Quantity)
		}

		if line.Total <= 0 && utf8.RuneCountInString(line.Description) <= 2 {
			continue
		}

		line.IsConstructionCost = !schema.ContainsAny(schema.Normalize(line.Description), indirect)

		out = append(out, line)
	}

	return out
}

type rowReader struct {
	header schema.Header
}

func (r rowReader) text(row []string, role schema.Role) string {
	idx, ok := r.header.Column(role)
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

// largest returns the biggest numeric cell above threshold, ignoring the
// code, description, quantity, unit price and date columns.
func (r rowReader) largest(row []string, threshold float64) float64 {
	roles := []schema.Role{
		schema.RoleCode, schema.RoleDescription, schema.RoleQuantity, schema.RoleUnitPrice, schema.RoleDate,
	}

	excluded := make(map[int]bool, len(roles))

	for _, role := range roles {
		if idx, ok := r.header.Column(role); ok {
			excluded[idx] = true
		}
	}

	var best float64

	for j, cell := range row {
		if excluded[j] {
			continue
		}

		if v := money.Parse(cell); v > threshold && v > best {
			best = v
		}
	}

	return best
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
