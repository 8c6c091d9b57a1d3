package reconcile

import (
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/costree/internal/money"
	"github.com/MrJamesThe3rd/costree/internal/schema"
	"github.com/MrJamesThe3rd/costree/internal/workbook"
)

// DefaultThreshold is the smallest figure accepted as a ground truth.
const DefaultThreshold = 1_000_000

// Strategy names one way of locating a ground-truth figure.
type Strategy string

const (
	StrategyCoordinates Strategy = "coordinates"
	StrategyMaxScan     Strategy = "max_scan"
	StrategySemantic    Strategy = "semantic"
)

// Sniper looks for an authoritative total in a workbook, independently of
// line extraction.
type Sniper struct {
	// SheetKeywords selects candidate sheets by name. Empty means every sheet.
	SheetKeywords []string
	// Coordinates are A1 cells probed first.
	Coordinates []string
	// A row qualifies for the semantic scan when its text holds one of
	// TotalKeywords and one of ReinforceKeywords.
	TotalKeywords     []string
	ReinforceKeywords []string
	Strategies        []Strategy
	Threshold         float64
}

// GroundTruth is the default sniper for budget workbooks.
func GroundTruth() Sniper {
	return Sniper{
		SheetKeywords:     []string{"RESUMO", "SUMMARY", "VIABILIDADE", "VIABILITY", "CAPA", "COVER"},
		Coordinates:       []string{"B2", "C2", "D2", "B5", "C5", "D5", "E5", "F10", "G10", "H10"},
		TotalKeywords:     []string{"TOTAL"},
		ReinforceKeywords: []string{"GERAL", "ORCAMENTO", "CUSTO", "OBRA", "GENERAL", "BUDGET", "COST", "WORK"},
		Strategies:        []Strategy{StrategyCoordinates, StrategyMaxScan, StrategySemantic},
		Threshold:         DefaultThreshold,
	}
}

// RealizedTotal is the default sniper for progress exports.
func RealizedTotal() Sniper {
	return Sniper{
		TotalKeywords:     []string{"TOTAL"},
		ReinforceKeywords: []string{"REALIZADO", "ACUMULADO", "MEDIDO", "REALIZED", "ACCUMULATED"},
		Strategies:        []Strategy{StrategySemantic},
		Threshold:         DefaultThreshold,
	}
}

// Finding is the ground truth located by a Sniper.
type Finding struct {
	Value    float64
	Sheet    string
	Strategy Strategy
}

// Found reports whether the finding clears threshold.
func (f Finding) Found(threshold float64) bool {
	return f.Value > threshold
}

// Find returns the largest qualifying figure over every enabled strategy and
// candidate sheet. Sheets and strategies are visited in order and the first
// source of the maximum is kept.
func (s Sniper) Find(sheets []workbook.Sheet) Finding {
	var (
		best      Finding
		sheetKw   = schema.NormalizeAll(s.SheetKeywords)
		totalKw   = schema.NormalizeAll(s.TotalKeywords)
		reinforce = schema.NormalizeAll(s.ReinforceKeywords)
	)

	consider := func(v float64, sheet string, st Strategy) {
		if v > s.Threshold && v > best.Value {
			best = Finding{Value: v, Sheet: sheet, Strategy: st}
		}
	}

	for _, sheet := range sheets {
		if len(sheetKw) > 0 && !schema.ContainsAny(schema.Normalize(sheet.Name), sheetKw) {
			continue
		}

		if s.enabled(StrategyCoordinates) {
			for _, axis := range s.Coordinates {
				consider(money.Parse(sheet.Cell(axis)), sheet.Name, StrategyCoordinates)
			}
		}

		if s.enabled(StrategyMaxScan) {
			for _, row := range sheet.Rows {
				consider(maxCell(row), sheet.Name, StrategyMaxScan)
			}
		}

		if s.enabled(StrategySemantic) && len(totalKw) > 0 {
			for _, row := range sheet.Rows {
				text := schema.Normalize(strings.Join(row, " "))
				if !schema.ContainsAny(text, totalKw) {
					continue
				}

				if len(reinforce) > 0 && !schema.ContainsAny(text, reinforce) {
					continue
				}

				consider(maxCell(row), sheet.Name, StrategySemantic)
			}
		}
	}

	return best
}

func (s Sniper) enabled(st Strategy) bool {
	return slices.Contains(s.Strategies, st)
}

func maxCell(row []string) float64 {
	var best float64

	for _, c := range row {
		if v := money.Parse(c); v > best {
			best = v
		}
	}

	return best
}
