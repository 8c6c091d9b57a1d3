package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/costree/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE OUT.xlsx",
	Short: "Import a budget workbook and write the reconciled tree as xlsx",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	res, err := importBudgetFile(cmd, args[0])
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[1], err)
	}

	if err := export.WriteBudget(out, res.Roots); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[1], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Exported "+args[1]))

	return nil
}
