package progress

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/costree/internal/money"
	"github.com/MrJamesThe3rd/costree/internal/schema"
	"github.com/MrJamesThe3rd/costree/internal/workbook"
)

// ItemOptions tunes item extraction.
type ItemOptions struct {
	// Rows whose description or code holds one of these are skipped.
	SkipKeywords []string
	// Descriptions or tags holding one of these are indirect costs.
	IndirectKeywords []string
}

func DefaultItemOptions() ItemOptions {
	return ItemOptions{
		SkipKeywords: []string{"TOTAL", "SUBTOTAL"},
		IndirectKeywords: []string{
			"INDIRETO", "INDIRECT", "ADMINISTRA", "BDI", "TAXA", "IMPOSTO", "SEGURO", "OVERHEAD",
		},
	}
}

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"01/2006",
	time.RFC3339,
}

// Items reads progress entries below header. Every row gets a fresh id.
func Items(sheet workbook.Sheet, header schema.Header, opts ItemOptions) []Item {
	var (
		skip     = schema.NormalizeAll(opts.SkipKeywords)
		indirect = schema.NormalizeAll(opts.IndirectKeywords)
		out      []Item
	)

	text := func(row []string, role schema.Role) string {
		idx, ok := header.Column(role)
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	for i := header.Row + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]

		desc := text(row, schema.RoleDescription)
		code := text(row, schema.RoleCode)
		value := money.Parse(text(row, schema.RoleValue))

		if value == 0 && utf8.RuneCountInString(desc) <= 2 {
			continue
		}

		if schema.ContainsAny(schema.Normalize(desc), skip) || schema.ContainsAny(schema.Normalize(code), skip) {
			continue
		}

		tag := schema.Normalize(text(row, schema.RoleTag))

		out = append(out, Item{
			ID:                 uuid.New(),
			ServiceDescription: desc,
			AccumulatedValue:   value,
			BudgetGroupCode:    code,
			Date:               ParseDate(text(row, schema.RoleDate)),
			IsIndirectCost:     schema.ContainsAny(tag, indirect) || schema.ContainsAny(schema.Normalize(desc), indirect),
			OriginSheet:        sheet.Name,
			SourceRow:          i + 1,
		})
	}

	return out
}

// ParseDate reads a spreadsheet date serial or a textual date. Unknown input
// gives the zero time.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return time.Time{}
		}

		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}
		}

		return t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return time.Time{}
}
