package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/costree/internal/budget/store"
	"github.com/MrJamesThe3rd/costree/internal/config"
	"github.com/MrJamesThe3rd/costree/internal/database"
	"github.com/MrJamesThe3rd/costree/internal/export"
	costreeHttp "github.com/MrJamesThe3rd/costree/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/costree/internal/http/budget"
	matchingHandler "github.com/MrJamesThe3rd/costree/internal/http/matching"
	progressHandler "github.com/MrJamesThe3rd/costree/internal/http/progress"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/costree/internal/matching/store"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	progressStore "github.com/MrJamesThe3rd/costree/internal/progress/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	rules, err := config.LoadRules(cfg.Import.RulesFile)
	if err != nil {
		slog.Error("failed to load import rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var (
		budgetService   = budget.NewService(budgetStore.New(db))
		progressService = progress.NewService(progressStore.New(db))
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(rules.Options(cfg.Import.Parallelism), logger, matchingService)
		exportService   = export.NewService(budgetService)
	)

	var (
		budgetH   = budgetHandler.NewHandler(importService, budgetService, exportService, cfg.Server.MaxUploadBytes)
		progressH = progressHandler.NewHandler(importService, budgetService, progressService, cfg.Server.MaxUploadBytes)
		matchingH = matchingHandler.NewHandler(matchingService)
	)

	router := costreeHttp.New(costreeHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, budgetH, progressH, matchingH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
