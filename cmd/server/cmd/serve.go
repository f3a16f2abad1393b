package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendly/server/internal/api"
	"github.com/attendly/server/internal/config"
	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/metrics"
	"github.com/attendly/server/internal/stats"
	"github.com/attendly/server/internal/storage/postgres"
	"github.com/attendly/server/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect the Postgres pool and start the metrics collector
- Serve the admin, private, and public API surfaces
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting attendly server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, cfg.Stats.AppName, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := newPool(poolCtx, cfg)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	services, err := buildServices(cfg, pool, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, services),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

func newPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// buildServices wires the domain services over a single repository. The view
// counter comes from the in-process collector unless STATS_URL points at a
// remote one.
func buildServices(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (api.Services, error) {
	repo, err := postgres.NewRepository(pool, cfg.Database.LockTimeout)
	if err != nil {
		return api.Services{}, fmt.Errorf("repository init failed: %w", err)
	}

	capacity := requests.NewAccountant(repo.Requests())

	var (
		views        events.ViewCounter
		statsService *stats.Service
	)
	if cfg.Stats.URL != "" {
		views = stats.NewClient(cfg.Stats.URL, cfg.Stats.AppName, logger)
	} else {
		statsService = stats.NewService(repo.Stats(), logger)
		views = stats.NewLocalCollector(statsService, cfg.Stats.AppName, logger)
	}

	eventsService := events.NewService(
		repo.Events(),
		repo.Locations(),
		repo.Users(),
		repo.Categories(),
		capacity,
		views,
		logger,
	)

	return api.Services{
		Events:       eventsService,
		Requests:     requests.NewService(postgres.NewAdmissionStore(repo), logger),
		Users:        users.NewService(repo.Users(), logger),
		Categories:   categories.NewService(repo.Categories(), logger),
		Compilations: compilations.NewService(repo.Compilations(), eventsService, logger),
		Comments:     comments.NewService(repo.Comments(), repo.Events(), repo.Users(), logger),
		Stats:        statsService,
		Pool:         pool,
	}, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}
