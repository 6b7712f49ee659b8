package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/capacity-planner/internal/config"
	"github.com/jonathan/capacity-planner/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveWeeksAhead int
	serveMigrate    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes forecast, workload and skill-match endpoints.

Backed by PostgreSQL (--database-url or DATABASE_URL) or a read-only snapshot (--snapshot).
Set JWT_SECRET to identify callers from bearer tokens.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().IntVar(&serveWeeksAhead, "weeks", 0, "Default horizon in weeks when a request omits weeks_ahead")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Create database tables before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	port := settings.Port
	if cmd.Flags().Changed("port") || port == 0 {
		port = servePort
	}
	weeksAhead := settings.WeeksAhead
	if cmd.Flags().Changed("weeks") {
		if serveWeeksAhead < 1 {
			return fmt.Errorf("--weeks must be a positive integer, got %d", serveWeeksAhead)
		}
		weeksAhead = serveWeeksAhead
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	b, err := openBackend(ctx, settings)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:       port,
		WeeksAhead: weeksAhead,
		JWT:        jwtConfig,
		Logger:     slog.Default(),
		OnShutdown: []func(){b.Close},
	}
	if b.db != nil {
		if serveMigrate {
			if err := b.db.Migrate(ctx); err != nil {
				b.Close()
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		cfg.Pinger = b.db
	}

	srv := server.New(b.engine(), cfg)
	slog.Info("backend ready",
		"port", port,
		"snapshot", settings.Snapshot,
		"database", b.db != nil,
		"auth", jwtConfig.Enabled(),
		"advisory", b.advice != nil)

	return srv.Start()
}
