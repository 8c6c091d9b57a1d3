package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/costree/internal/budget/store"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/costree/internal/matching/store"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	progressStore "github.com/MrJamesThe3rd/costree/internal/progress/store"
)

var (
	progressBudgetFile string
	progressCostCenter string
	progressSave       bool
)

var progressCmd = &cobra.Command{
	Use:   "progress FILE",
	Short: "Import a progress export, merging repeated snapshot rows",
	Long: `Import a progress export. Rows repeated across monthly snapshots collapse
into the one with the largest accumulated value. Items are linked to a budget
tree read from --budget, or loaded from the database for --cost-center.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().StringVar(&progressBudgetFile, "budget", "", "budget workbook to link items against")
	progressCmd.Flags().StringVar(&progressCostCenter, "cost-center", "", "stored cost center to link against and save into")
	progressCmd.Flags().BoolVar(&progressSave, "save", false, "merge the items into the stored items of --cost-center")

	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	if progressSave && progressCostCenter == "" {
		return errors.New("--save needs --cost-center")
	}

	ctx := cmd.Context()

	var roots []*budget.Node

	if progressBudgetFile != "" {
		res, err := importBudgetFile(cmd, progressBudgetFile)
		if err != nil {
			return fmt.Errorf("importing budget %s: %w", progressBudgetFile, err)
		}

		roots = res.Roots
	}

	var (
		suggester importer.Suggester
		items     *progress.Service
	)

	if progressCostCenter != "" {
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		suggester = matching.NewService(matchingStore.New(db))
		items = progress.NewService(progressStore.New(db))

		if roots == nil {
			stored, err := budget.NewService(budgetStore.New(db)).Tree(ctx, progressCostCenter)
			if err != nil && !errors.Is(err, budget.ErrNotFound) {
				return err
			}

			roots = stored
		}
	}

	imp, err := newImporter(cmd, suggester)
	if err != nil {
		return err
	}

	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res := imp.ImportProgress(ctx, filepath.Base(args[0]), f, roots)
	if res.Report.Failed {
		return fmt.Errorf("importing %s: %s", args[0], res.Report.Error)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, renderItems(res.Items))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderReport(res.Report))

	if !progressSave {
		return nil
	}

	merged, err := items.Merge(ctx, progressCostCenter, res.Items)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s now holds %d items", progressCostCenter, len(merged))))

	return nil
}
