package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wellness-agent/internal/config"
	"wellness-agent/internal/platform/logging"
	"wellness-agent/internal/platform/postgres"
)

const serviceName = "wellness-agent"

func main() {
	rootCmd := &cobra.Command{
		Use:           "wellness-agent",
		Short:         "Wellness therapy assessment API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Init(serviceName, cfg.IsDev())
			return runServer(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	for _, direction := range []postgres.Direction{postgres.Up, postgres.Down} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: "Migrate the schema " + string(direction),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				logging.Init(serviceName, cfg.IsDev())
				return runMigrations(cmd.Context(), cfg, direction)
			},
		})
	}
	return cmd
}

func runMigrations(ctx context.Context, cfg *config.Config, direction postgres.Direction) error {
	if cfg.DatabaseURL == "" {
		return errNoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 10)
	if err != nil {
		return err
	}
	db.Close()

	if err := postgres.Migrate(cfg.DatabaseURL, cfg.MigrationsDir, direction); err != nil {
		return err
	}
	log.Info().Str("direction", string(direction)).Msg("migrations applied")
	return nil
}
