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

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/config"
	"github.com/khabaroff/metrology-license-registry/src/database"
	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/khabaroff/metrology-license-registry/src/repositories/postgres"
	"github.com/khabaroff/metrology-license-registry/src/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "licensereg",
	Short: "Equipment license registry with a public lookup page and admin dashboard",
	// Running without a subcommand starts the server
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates configuration and sets up logging
func loadConfig() (*config.Config, error) {
	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connect opens the database pool, failing after 30 seconds
func connect(cfg *config.Config) (*database.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log.Info().
		Int("port", cfg.Port).
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	if cfg.SecretGenerated() {
		log.Warn().Msg("SECRET_KEY not set, using a random key; sessions will not survive a restart")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			log.Error().Err(err).Msg("failed to apply migrations")
			return err
		}
	}

	db, err := connect(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize database")
		return err
	}
	defer db.Close()

	log.Info().Msg("database connected")

	srv, err := server.New(cfg, server.Dependencies{
		Health:   db,
		Admins:   postgres.NewAdminRepository(db.GetPool()),
		Licenses: postgres.NewLicenseRepository(db.GetPool()),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build router")
		return err
	}
	defer srv.Close()

	// Auto-seed admin user on first run (if ADMIN_USERNAME and ADMIN_PASSWORD are set)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := srv.Admins.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("failed to create initial admin user")
		case created:
			log.Info().Str("username", cfg.AdminUsername).Msg("initial admin user created")
		}
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}

	log.Info().Msg("server shut down successfully")
	return nil
}
