package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/avetrov/gamebank/internal/api"
	"github.com/avetrov/gamebank/internal/factory"
	"github.com/avetrov/gamebank/internal/services/session"
	redisstorage "github.com/avetrov/gamebank/internal/storage/redis"
)

type serverEnv struct {
	Host            string        `env:"HOST" envDefault:""`
	Port            int           `env:"PORT" envDefault:"8080"`
	StorageType     string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL        string        `env:"REDIS_URL"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
}

func main() {
	var envCfg serverEnv
	if err := env.Parse(&envCfg); err != nil {
		slog.Error("failed to parse environment", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: envCfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:        logger,
		StorageType:   envCfg.StorageType,
		SessionConfig: session.Config{Duration: envCfg.SessionDuration},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if envCfg.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = envCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Registry:       app.Registry,
		Sessions:       app.Sessions,
		RoomController: app.RoomController,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = envCfg.Host
	serverConfig.Port = envCfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
