package cmd

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

	"github.com/spf13/cobra"

	"github.com/mkarlsen/ganttdash/internal/config"
	"github.com/mkarlsen/ganttdash/internal/database"
	"github.com/mkarlsen/ganttdash/internal/gitlab"
	"github.com/mkarlsen/ganttdash/internal/logging"
	"github.com/mkarlsen/ganttdash/internal/server"
	"github.com/mkarlsen/ganttdash/internal/services/edit"
	"github.com/mkarlsen/ganttdash/internal/store"
)

var (
	serveAddr   string
	serveStatic string
	serveTheme  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "Directory with the frontend files (overrides config)")
	serveCmd.Flags().StringVar(&serveTheme, "theme", "", "Chart theme, light or dark (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveStatic != "" {
		cfg.Server.StaticDir = serveStatic
	}
	if serveTheme != "" {
		cfg.Chart.Theme = serveTheme
	}

	if err := logging.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := slog.Default()

	db, err := database.InitDB(ctx, cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	remote := gitlab.NewClient(cfg.GitLab.BaseURL, cfg.GitLab.Token, cfg.GitLab.Project)
	prefs := database.NewPrefRepository(db)

	st := store.New(ctx, remote, prefs, cfg.Chart.DefaultSpanDays, time.Now)
	if _, err := st.Refresh(ctx); err != nil {
		// The store already degraded to the demonstration dataset
		logger.Warn("initial fetch failed", slog.String("error", err.Error()))
	}

	edits := edit.NewCoordinator(remote, st)
	srv := server.New(st, edits, logger, cfg.Server.StaticDir, cfg.Chart.Theme)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server",
			slog.String("addr", httpServer.Addr),
			slog.String("project", cfg.GitLab.Project))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
