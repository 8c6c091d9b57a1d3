package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/extract"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
	"github.com/MrJamesThe3rd/costree/internal/schema"
	"github.com/MrJamesThe3rd/costree/internal/workbook"
)

// Suggester fills missing budget codes on progress items.
type Suggester interface {
	Fill(ctx context.Context, items []progress.Item) (int, error)
}

type Service struct {
	opts      Options
	log       *slog.Logger
	suggester Suggester
}

// NewService builds an import pipeline. logger and suggester may be nil.
func NewService(opts Options, logger *slog.Logger, suggester Suggester) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		opts:      opts.WithDefaults(),
		log:       logger,
		suggester: suggester,
	}
}

// SheetReport describes what one sheet contributed.
type SheetReport struct {
	Name      string
	HeaderRow int
	Lines     int
	Skipped   bool
}

// Report summarizes an import run. A failed run carries its error text and an
// empty result.
type Report struct {
	Sheets              []SheetReport
	GroundTruth         reconcile.Finding
	Correction          reconcile.Correction
	DroppedDuplicates   int
	ExcludedDescendants int
	Merged              int
	Suggested           int
	Failed              bool
	Error               string
}

// Imported is the number of lines or items the sheets yielded before any
// whole-document pass.
func (r Report) Imported() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.Lines
	}

	return n
}

type BudgetResult struct {
	Roots  []*budget.Node
	Lines  []budget.Line
	Report Report
}

type ProgressResult struct {
	Items  []progress.Item
	Report Report
}

// ImportBudget reads a workbook and turns it into a budget tree. Failures
// never propagate: they are logged and reported on an empty result.
func (s *Service) ImportBudget(ctx context.Context, name string, r io.Reader) BudgetResult {
	wb, err := workbook.Load(name, r)
	if err != nil {
		s.log.Error("failed to load budget workbook", "file", name, "error", err)
		return BudgetResult{Report: failed(Report{}, err)}
	}

	return s.BudgetFromWorkbook(ctx, wb)
}

func (s *Service) BudgetFromWorkbook(ctx context.Context, wb *workbook.Workbook) (res BudgetResult) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			s.log.Error("budget import crashed", "file", wb.Name, "error", err)
			res = BudgetResult{Report: failed(res.Report, err)}
		}
	}()

	perSheet, err := extractSheets(ctx, s.opts, wb.Sheets, s.opts.BudgetRequirement,
		func(sheet workbook.Sheet, h schema.Header) []budget.RawLine {
			return extract.Lines(sheet, h, s.opts.Extract)
		})
	if err != nil {
		s.log.Error("budget extraction failed", "file", wb.Name, "error", err)
		return BudgetResult{Report: failed(Report{}, err)}
	}

	var (
		report Report
		raw    []budget.RawLine
	)

	for _, sr := range perSheet {
		report.Sheets = append(report.Sheets, sr.report)
		s.logSheet(wb.Name, sr.report)
		raw = append(raw, sr.rows...)
	}

	raw, report.DroppedDuplicates = uniqueCodes(raw)

	lines := budget.Classify(raw, s.opts.GroupLeafRatio)
	lines, report.ExcludedDescendants = dropMasqueradingDescendants(lines)

	report.GroundTruth = s.opts.GroundTruth.Find(wb.Sheets)

	rec := s.opts.Reconcile
	rec.Threshold = s.opts.GroundTruth.Threshold

	lines, report.Correction = reconcile.Correct(lines, report.GroundTruth, rec)
	s.logCorrection(wb.Name, report)

	nodes := make([]*budget.Node, len(lines))
	for i, l := range lines {
		nodes[i] = budget.NewNode(l)
	}

	roots, err := budget.Build(nodes)
	if err != nil {
		s.log.Error("failed to build budget tree", "file", wb.Name, "error", err)
		return BudgetResult{Report: failed(report, err)}
	}

	s.log.Info("budget imported", "file", wb.Name, "lines", len(lines), "roots", len(roots), "total", budget.Total(roots))

	return BudgetResult{Roots: roots, Lines: lines, Report: report}
}

// ImportProgress reads a progress export, deduplicates its snapshot rows and
// links items to the nodes of budget when given.
func (s *Service) ImportProgress(ctx context.Context, name string, r io.Reader, budgetRoots []*budget.Node) ProgressResult {
	wb, err := workbook.Load(name, r)
	if err != nil {
		s.log.Error("failed to load progress workbook", "file", name, "error", err)
		return ProgressResult{Report: failed(Report{}, err)}
	}

	return s.ProgressFromWorkbook(ctx, wb, budgetRoots)
}

func (s *Service) ProgressFromWorkbook(ctx context.Context, wb *workbook.Workbook, budgetRoots []*budget.Node) (res ProgressResult) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			s.log.Error("progress import crashed", "file", wb.Name, "error", err)
			res = ProgressResult{Report: failed(res.Report, err)}
		}
	}()

	perSheet, err := extractSheets(ctx, s.opts, wb.Sheets, s.opts.ProgressRequirement,
		func(sheet workbook.Sheet, h schema.Header) []progress.Item {
			return progress.Items(sheet, h, s.opts.Items)
		})
	if err != nil {
		s.log.Error("progress extraction failed", "file", wb.Name, "error", err)
		return ProgressResult{Report: failed(Report{}, err)}
	}

	var (
		report Report
		items  []progress.Item
	)

	for _, sr := range perSheet {
		report.Sheets = append(report.Sheets, sr.report)
		s.logSheet(wb.Name, sr.report)
		items = append(items, sr.rows...)
	}

	if s.suggester != nil {
		n, err := s.suggester.Fill(ctx, items)
		if err != nil {
			s.log.Warn("code suggestion failed", "file", wb.Name, "error", err)
		}

		report.Suggested = n
	}

	deduped := progress.Dedupe(items)
	report.Merged = len(items) - len(deduped)

	report.GroundTruth = s.opts.RealizedTotal.Find(wb.Sheets)

	rec := s.opts.Reconcile
	rec.Threshold = s.opts.RealizedTotal.Threshold

	deduped, report.Correction = progress.Correct(deduped, report.GroundTruth, rec)
	s.logCorrection(wb.Name, report)

	if len(budgetRoots) > 0 {
		deduped = progress.Link(deduped, budgetRoots)
	}

	s.log.Info("progress imported", "file", wb.Name, "items", len(deduped), "merged", report.Merged)

	return ProgressResult{Items: deduped, Report: report}
}

type sheetRows[T any] struct {
	report SheetReport
	rows   []T
}

// extractSheets sniffs and extracts every sheet concurrently and returns the
// results in sheet order. A sheet without a header is reported as skipped.
func extractSheets[T any](
	ctx context.Context,
	opts Options,
	sheets []workbook.Sheet,
	req schema.Requirement,
	fn func(workbook.Sheet, schema.Header) []T,
) ([]sheetRows[T], error) {
	out := make([]sheetRows[T], len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	for i, sheet := range sheets {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("sheet %q: panic: %v", sheet.Name, p)
				}
			}()

			if err := ctx.Err(); err != nil {
				return err
			}

			h, ok := schema.Sniff(sheet.Rows, opts.Roles, req, opts.HeaderScanRows)
			if !ok {
				out[i] = sheetRows[T]{report: SheetReport{Name: sheet.Name, HeaderRow: -1, Skipped: true}}
				return nil
			}

			rows := fn(sheet, h)
			out[i] = sheetRows[T]{
				report: SheetReport{Name: sheet.Name, HeaderRow: h.Row, Lines: len(rows)},
				rows:   rows,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// uniqueCodes keeps the first line of every code.
func uniqueCodes(lines []budget.RawLine) ([]budget.RawLine, int) {
	seen := make(map[string]bool, len(lines))
	out := make([]budget.RawLine, 0, len(lines))

	for _, l := range lines {
		if seen[l.Code] {
			continue
		}

		seen[l.Code] = true
		out = append(out, l)
	}

	return out, len(lines) - len(out)
}

// dropMasqueradingDescendants removes lines sitting below a line that was
// classified as a payable leaf despite having descendants.
func dropMasqueradingDescendants(lines []budget.Line) ([]budget.Line, int) {
	leaf := make(map[string]bool, len(lines))
	for _, l := range lines {
		leaf[l.Code] = !l.IsGroup
	}

	kept := slices.DeleteFunc(slices.Clone(lines), func(l budget.Line) bool {
		for p := budget.ParentCode(l.Code); p != ""; p = budget.ParentCode(p) {
			if leaf[p] {
				return true
			}
		}

		return false
	})

	return kept, len(lines) - len(kept)
}

func failed(r Report, err error) Report {
	r.Failed = true
	r.Error = err.Error()

	return r
}

func (s *Service) logSheet(file string, r SheetReport) {
	if r.Skipped {
		s.log.Warn("sheet skipped, no header found", "file", file, "sheet", r.Name)
		return
	}

	s.log.Info("sheet extracted", "file", file, "sheet", r.Name, "header_row", r.HeaderRow, "lines", r.Lines)
}

func (s *Service) logCorrection(file string, r Report) {
	c := r.Correction
	if !c.Applied && !c.Injected {
		return
	}

	s.log.Info("totals reconciled",
		"file", file,
		"ground_truth", r.GroundTruth.Value,
		"sheet", r.GroundTruth.Sheet,
		"strategy", r.GroundTruth.Strategy,
		"before", c.Before,
		"after", c.After,
		"ratio", c.Ratio,
		"injected", c.Injected,
	)
}
