package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/costree/internal/budget/store"
	"github.com/MrJamesThe3rd/costree/internal/importer"
)

var (
	budgetCostCenter string
	budgetSave       bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget FILE",
	Short: "Import a budget workbook and print its cost-code tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudget,
}

func init() {
	budgetCmd.Flags().StringVar(&budgetCostCenter, "cost-center", "", "cost center the tree belongs to")
	budgetCmd.Flags().BoolVar(&budgetSave, "save", false, "replace the stored tree of --cost-center")

	rootCmd.AddCommand(budgetCmd)
}

func importBudgetFile(cmd *cobra.Command, path string) (importer.BudgetResult, error) {
	svc, err := newImporter(cmd, nil)
	if err != nil {
		return importer.BudgetResult{}, err
	}

	f, err := openFile(path)
	if err != nil {
		return importer.BudgetResult{}, err
	}
	defer f.Close()

	res := svc.ImportBudget(cmd.Context(), filepath.Base(path), f)
	if res.Report.Failed {
		return res, errors.New(res.Report.Error)
	}

	return res, nil
}

func runBudget(cmd *cobra.Command, args []string) error {
	if budgetSave && budgetCostCenter == "" {
		return errors.New("--save needs --cost-center")
	}

	res, err := importBudgetFile(cmd, args[0])
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()

	title := budgetCostCenter
	if title == "" {
		title = filepath.Base(args[0])
	}

	fmt.Fprintln(out, renderTree(title, res.Roots))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderReport(res.Report))

	if !budgetSave {
		return nil
	}

	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := budget.NewService(budgetStore.New(db)).Save(cmd.Context(), budgetCostCenter, res.Roots); err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Saved %d nodes to %s", len(budget.Flatten(res.Roots)), budgetCostCenter)))

	return nil
}
