package reconcile

import (
	"fmt"
	"math"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/money"
)

// DefaultTolerance is the relative divergence below which no correction is
// applied.
const DefaultTolerance = 0.01

// GlobalCode is the code of the line injected when nothing else carries value.
const GlobalCode = "GLOBAL"

type Options struct {
	Tolerance         float64
	Threshold         float64
	GlobalDescription string
}

func DefaultOptions() Options {
	return Options{
		Tolerance:         DefaultTolerance,
		Threshold:         DefaultThreshold,
		GlobalDescription: "CUSTO GLOBAL",
	}
}

// Correction records what Correct did to a line set.
type Correction struct {
	Before   float64
	After    float64
	Ratio    float64
	Applied  bool
	Injected bool
}

// Ratio returns ground/sum and whether it diverges from 1 by more than
// tolerance. A non-positive sum never yields a ratio.
func Ratio(ground, sum, tolerance float64) (float64, bool) {
	if sum <= 0 || ground <= 0 {
		return 1, false
	}

	r := ground / sum
	if math.IsInf(r, 0) || math.Abs(1-r) <= tolerance {
		return 1, false
	}

	return r, true
}

// Sum adds the totals of every non-group line.
func Sum(lines []budget.Line) float64 {
	values := make([]float64, 0, len(lines))

	for _, l := range lines {
		if !l.IsGroup {
			values = append(values, l.Total)
		}
	}

	return money.Sum(values...)
}

// Correct rescales every line so the payable sum matches ground. When no line
// carries value a single global line holding ground is appended instead.
// Ground figures at or below the threshold leave lines untouched.
func Correct(lines []budget.Line, ground Finding, opts Options) ([]budget.Line, Correction) {
	before := Sum(lines)
	c := Correction{Before: before, After: before, Ratio: 1}

	if !ground.Found(opts.Threshold) {
		return lines, c
	}

	if before == 0 {
		out := append(cloneLines(lines), budget.Line{
			RawLine: budget.RawLine{
				Code:               globalCode(lines),
				Description:        opts.GlobalDescription,
				Quantity:           1,
				UnitPrice:          money.Round2(ground.Value),
				Total:              money.Round2(ground.Value),
				OriginSheet:        ground.Sheet,
				IsConstructionCost: true,
			},
			ItemType: budget.ItemService,
		})

		c.After = Sum(out)
		c.Injected = true

		return out, c
	}

	ratio, ok := Ratio(ground.Value, before, opts.Tolerance)
	if !ok {
		return lines, c
	}

	out := cloneLines(lines)
	for i := range out {
		out[i].Total = money.Scale(out[i].Total, ratio)
		out[i].UnitPrice = money.Scale(out[i].UnitPrice, ratio)
	}

	c.After = Sum(out)
	c.Ratio = ratio
	c.Applied = true

	return out, c
}

func cloneLines(lines []budget.Line) []budget.Line {
	out := make([]budget.Line, len(lines), len(lines)+1)
	copy(out, lines)

	return out
}

func globalCode(lines []budget.Line) string {
	taken := make(map[string]bool, len(lines))
	for _, l := range lines {
		taken[l.Code] = true
	}

	code := GlobalCode
	for i := 1; taken[code]; i++ {
		code = fmt.Sprintf("%s-%d", GlobalCode, i)
	}

	return code
}
