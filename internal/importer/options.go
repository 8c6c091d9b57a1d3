package importer

import (
	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/extract"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
	"github.com/MrJamesThe3rd/costree/internal/schema"
)

// Options gathers every tunable of the import pipeline.
type Options struct {
	Roles               schema.Table
	BudgetRequirement   schema.Requirement
	ProgressRequirement schema.Requirement
	HeaderScanRows      int

	Extract        extract.Options
	Items          progress.ItemOptions
	GroupLeafRatio float64

	GroundTruth   reconcile.Sniper
	RealizedTotal reconcile.Sniper
	Reconcile     reconcile.Options

	// Parallelism bounds concurrent sheet extraction. Zero or less means one
	// worker per sheet.
	Parallelism int
}

// BudgetRequirement is the default header requirement of budget sheets.
func BudgetRequirement() schema.Requirement {
	return schema.Requirement{
		All: []schema.Role{schema.RoleDescription},
		Any: []schema.Role{schema.RoleTotal, schema.RoleCode, schema.RoleUnitPrice},
	}
}

// ProgressRequirement is the default header requirement of progress sheets.
func ProgressRequirement() schema.Requirement {
	return schema.Requirement{
		All: []schema.Role{schema.RoleValue},
		Any: []schema.Role{schema.RoleDescription, schema.RoleDate},
	}
}

// WithDefaults fills zero fields with package defaults. Roles has no default
// and must be set by the caller.
func (o Options) WithDefaults() Options {
	if len(o.BudgetRequirement.All) == 0 && len(o.BudgetRequirement.Any) == 0 {
		o.BudgetRequirement = BudgetRequirement()
	}

	if len(o.ProgressRequirement.All) == 0 && len(o.ProgressRequirement.Any) == 0 {
		o.ProgressRequirement = ProgressRequirement()
	}

	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = schema.DefaultMaxRows
	}

	if o.GroupLeafRatio <= 0 {
		o.GroupLeafRatio = budget.DefaultGroupLeafRatio
	}

	def := extract.DefaultOptions()
	if o.Extract.SummarySheetKeywords == nil {
		o.Extract.SummarySheetKeywords = def.SummarySheetKeywords
	}

	if o.Extract.SkipCodeKeywords == nil {
		o.Extract.SkipCodeKeywords = def.SkipCodeKeywords
	}

	if o.Extract.IndirectKeywords == nil {
		o.Extract.IndirectKeywords = def.IndirectKeywords
	}

	if o.Extract.NoiseThreshold <= 0 {
		o.Extract.NoiseThreshold = def.NoiseThreshold
	}

	items := progress.DefaultItemOptions()
	if o.Items.SkipKeywords == nil {
		o.Items.SkipKeywords = items.SkipKeywords
	}

	if o.Items.IndirectKeywords == nil {
		o.Items.IndirectKeywords = items.IndirectKeywords
	}

	if len(o.GroundTruth.Strategies) == 0 {
		o.GroundTruth = reconcile.GroundTruth()
	}

	if len(o.RealizedTotal.Strategies) == 0 {
		o.RealizedTotal = reconcile.RealizedTotal()
	}

	rec := reconcile.DefaultOptions()
	if o.Reconcile.Tolerance <= 0 {
		o.Reconcile.Tolerance = rec.Tolerance
	}

	if o.Reconcile.Threshold <= 0 {
		o.Reconcile.Threshold = rec.Threshold
	}

	if o.Reconcile.GlobalDescription == "" {
		o.Reconcile.GlobalDescription = rec.GlobalDescription
	}

	return o
}
