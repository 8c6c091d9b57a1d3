package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/costree/internal/extract"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
	"github.com/MrJamesThe3rd/costree/internal/schema"
)

//go:embed rules.yaml
var defaultRules []byte

type RoleRule struct {
	Contains []string `yaml:"contains"`
	Exact    []string `yaml:"exact"`
	Prefix   []string `yaml:"prefix"`
	Exclude  []string `yaml:"exclude"`
}

type RequirementRule struct {
	All []string `yaml:"all"`
	Any []string `yaml:"any"`
}

type SniperRule struct {
	Sheets            []string `yaml:"sheets"`
	Coordinates       []string `yaml:"coordinates"`
	TotalKeywords     []string `yaml:"total_keywords"`
	ReinforceKeywords []string `yaml:"reinforce_keywords"`
	Strategies        []string `yaml:"strategies"`
	Threshold         float64  `yaml:"threshold"`
}

// Rules is the keyword and threshold document driving the import pipeline.
type Rules struct {
	Header struct {
		ScanRows int             `yaml:"scan_rows"`
		Budget   RequirementRule `yaml:"budget"`
		Progress RequirementRule `yaml:"progress"`
	} `yaml:"header"`

	Roles map[string]RoleRule `yaml:"roles"`

	SummarySheets    []string `yaml:"summary_sheets"`
	SkipCodes        []string `yaml:"skip_codes"`
	IndirectKeywords []string `yaml:"indirect_keywords"`
	ProgressSkip     []string `yaml:"progress_skip"`

	NoiseThreshold    float64 `yaml:"noise_threshold"`
	GroupLeafRatio    float64 `yaml:"group_leaf_ratio"`
	RatioTolerance    float64 `yaml:"ratio_tolerance"`
	GlobalDescription string  `yaml:"global_description"`

	GroundTruth   SniperRule `yaml:"ground_truth"`
	RealizedTotal SniperRule `yaml:"realized_total"`
}

// DefaultRules parses the embedded rules document.
func DefaultRules() (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(defaultRules, &r); err != nil {
		return nil, fmt.Errorf("parse embedded rules: %w", err)
	}

	return &r, nil
}

// LoadRules returns the embedded rules overlaid with the document at path.
// Keys present in the file replace the defaults; a role entry replaces the
// whole default rule of that role. An empty path returns the defaults.
func LoadRules(path string) (*Rules, error) {
	r, err := DefaultRules()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}

		if err := yaml.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("parse rules file %s: %w", path, err)
		}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

var strategyNames = []string{
	string(reconcile.StrategyCoordinates),
	string(reconcile.StrategyMaxScan),
	string(reconcile.StrategySemantic),
}

// Validate rejects unknown role and strategy names.
func (r *Rules) Validate() error {
	known := make([]string, len(schema.Roles))
	for i, role := range schema.Roles {
		known[i] = string(role)
	}

	for name := range r.Roles {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown role %q in rules", name)
		}
	}

	for _, req := range []RequirementRule{r.Header.Budget, r.Header.Progress} {
		for _, name := range slices.Concat(req.All, req.Any) {
			if !slices.Contains(known, name) {
				return fmt.Errorf("unknown role %q in header requirement", name)
			}
		}
	}

	for _, s := range slices.Concat(r.GroundTruth.Strategies, r.RealizedTotal.Strategies) {
		if !slices.Contains(strategyNames, s) {
			return fmt.Errorf("unknown strategy %q in rules", s)
		}
	}

	return nil
}

// Options converts the rules into pipeline options. Parallelism comes from the
// process configuration, not the rules document.
func (r *Rules) Options(parallelism int) importer.Options {
	table := make(map[schema.Role]schema.Rule, len(r.Roles))
	for name, rule := range r.Roles {
		table[schema.Role(name)] = schema.Rule{
			Contains: rule.Contains,
			Exact:    rule.Exact,
			Prefix:   rule.Prefix,
			Exclude:  rule.Exclude,
		}
	}

	opts := importer.Options{
		Roles:               schema.NewTable(table),
		BudgetRequirement:   requirement(r.Header.Budget),
		ProgressRequirement: requirement(r.Header.Progress),
		HeaderScanRows:      r.Header.ScanRows,
		Extract: extract.Options{
			SummarySheetKeywords: r.SummarySheets,
			SkipCodeKeywords:     r.SkipCodes,
			IndirectKeywords:     r.IndirectKeywords,
			NoiseThreshold:       r.NoiseThreshold,
		},
		Items: progress.ItemOptions{
			SkipKeywords:     r.ProgressSkip,
			IndirectKeywords: r.IndirectKeywords,
		},
		GroupLeafRatio: r.GroupLeafRatio,
		GroundTruth:    sniper(r.GroundTruth),
		RealizedTotal:  sniper(r.RealizedTotal),
		Reconcile: reconcile.Options{
			Tolerance:         r.RatioTolerance,
			GlobalDescription: r.GlobalDescription,
		},
		Parallelism: parallelism,
	}

	return opts.WithDefaults()
}

func requirement(rr RequirementRule) schema.Requirement {
	var req schema.Requirement
	for _, name := range rr.All {
		req.All = append(req.All, schema.Role(name))
	}

	for _, name := range rr.Any {
		req.Any = append(req.Any, schema.Role(name))
	}

	return req
}

func sniper(sr SniperRule) reconcile.Sniper {
	s := reconcile.Sniper{
		SheetKeywords:     sr.Sheets,
		Coordinates:       sr.Coordinates,
		TotalKeywords:     sr.TotalKeywords,
		ReinforceKeywords: sr.ReinforceKeywords,
		Threshold:         sr.Threshold,
	}

	for _, name := range sr.Strategies {
		s.Strategies = append(s.Strategies, reconcile.Strategy(name))
	}

	if s.Threshold <= 0 {
		s.Threshold = reconcile.DefaultThreshold
	}

	return s
}
