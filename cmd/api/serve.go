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
	"github.com/goto-masaaki-dm/praise-todo/internal/api/routes"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/migrations"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/goto-masaaki-dm/praise-todo/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations on startup")
	return cmd
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *logger.Logger, *connection.Database, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := connection.Open(cfg)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, log, db, nil
}

func runServe(skipMigrate bool) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	log.Info("Configuration loaded",
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.String("timezone", cfg.Gamification.Timezone),
	)

	if !skipMigrate {
		if err := migrations.AutoMigrate(db, log.Logger); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.NewConfigFromEnv(cfg), log.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
	} else {
		log.Warn("Redis disabled: rate limiting, response cache and live progress are off")
	}

	services, err := routes.NewServices(cfg, db, redisClient, log.Logger)
	if err != nil {
		return err
	}

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   log.Logger,
		DB:       db,
		Redis:    redisClient,
		Services: services,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}
