package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/database"
	"github.com/panjilaras/Dashboard-PI/internal/handler"
	"github.com/panjilaras/Dashboard-PI/internal/repository"
	"github.com/panjilaras/Dashboard-PI/internal/router"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background job server",
		Long: `Run the HTTP API and the background job server.

Pending migrations are applied before the server starts, in every
environment. Pass --skip-migrations when the schema is managed separately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			if !skipMigrations {
				if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
					log.Fatal().Err(err).Msg("failed to migrate database")
				}
			}

			srv, err := server.New(cfg, &log, loggerService)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize server")
			}

			repos := repository.NewRepositories(srv)

			services, err := service.NewServices(srv, repos)
			if err != nil {
				log.Fatal().Err(err).Msg("could not create services")
			}

			handlers := handler.NewHandlers(srv, services)
			r := router.NewRouter(srv, handlers, services.Auth)

			if err := srv.Job.Start(); err != nil {
				log.Fatal().Err(err).Msg("failed to start background job server")
			}

			srv.SetupHTTPServer(r)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("failed to start server")
				}
			}()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info().Msg("server exited properly")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without applying pending migrations")
	return cmd
}
