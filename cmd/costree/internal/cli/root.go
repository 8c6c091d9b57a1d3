package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/costree/internal/config"
	"github.com/MrJamesThe3rd/costree/internal/database"
	"github.com/MrJamesThe3rd/costree/internal/importer"
)

var (
	rulesFile   string
	parallelism int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "costree",
	Short: "Turn budget and progress spreadsheets into cost-code trees",
	Long: `costree reads budget workbooks (xlsx or csv) of unknown layout, infers
their header and column roles, reconciles the extracted lines against the total
stated in the workbook and prints the resulting cost-code tree.

Examples:
  costree budget obra.xlsx
  costree budget obra.xlsx --save --cost-center torre-a
  costree progress rdo-marco.xlsx --budget obra.xlsx
  costree export obra.xlsx orcamento.xlsx`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		_ = godotenv.Load()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rules overlaying the built-in keywords (defaults to IMPORT_RULES_FILE)")
	rootCmd.PersistentFlags().IntVar(&parallelism, "parallelism", 4, "sheets extracted concurrently")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline step")
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newImporter builds the import pipeline from the rules flag or environment.
// suggester may be nil.
func newImporter(cmd *cobra.Command, suggester importer.Suggester) (*importer.Service, error) {
	path := rulesFile
	if path == "" {
		path = os.Getenv("IMPORT_RULES_FILE")
	}

	rules, err := config.LoadRules(path)
	if err != nil {
		return nil, err
	}

	return importer.NewService(rules.Options(parallelism), newLogger(cmd.ErrOrStderr()), suggester), nil
}

// openDB connects with the process configuration and applies migrations.
func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return f, nil
}
