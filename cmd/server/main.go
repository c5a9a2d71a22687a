package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodloop-backend/internal/config"
	"foodloop-backend/internal/database"
	"foodloop-backend/internal/logging"
	"foodloop-backend/internal/metrics"
	"foodloop-backend/internal/server"
	"foodloop-backend/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodloop",
		Short:         "FoodLoop waste tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return cmd
}

// bootstrap loads config, sets up logging and opens the configured store.
func bootstrap() (*config.Config, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Init("foodloop-backend", cfg.Env, cfg.LogLevel)

	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		return cfg, store.NewMemoryStore(), nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, store.NewGormStore(db), nil
}

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := bootstrap()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The memory store starts empty, so it always gets the demo rows.
			if cfg.SeedDemo || cfg.StoreDriver == config.DriverMemory {
				if err := store.SeedDemo(ctx, st); err != nil {
					return fmt.Errorf("seed demo data: %w", err)
				}
			}

			app := server.New(cfg, st, metrics.New())

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("server listening")
				errCh <- app.Listen(":" + cfg.HTTPPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			return app.ShutdownWithTimeout(shutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides HTTP_PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Init("foodloop-backend", cfg.Env, cfg.LogLevel)
			if cfg.StoreDriver != config.DriverPostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
			}

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo businesses, accounts and waste entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverMemory {
				log.Warn().Msg("seeding the in-memory store has no lasting effect")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := store.SeedDemo(ctx, st); err != nil {
				return err
			}
			log.Info().Msg("demo data seeded")
			return nil
		},
	}
}
