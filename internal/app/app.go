package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/circles/backend/internal/config"
	"github.com/circles/backend/internal/db"
	"github.com/circles/backend/internal/handlers"
	"github.com/circles/backend/internal/httpserver"
	"github.com/circles/backend/internal/logging"
	"github.com/circles/backend/internal/middleware"
	"github.com/circles/backend/internal/repositories"
	"github.com/circles/backend/internal/seed"
)

const defaultSeedCount = 20

// Run bootstraps the Circles backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "serve":
		return serve(ctx, cfg, logger)
	case "migrate":
		return runMigrations(ctx, cfg, args[1:])
	case "seed":
		return runSeed(ctx, cfg, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	deps, manager, err := buildDependencies(pool, redisClient, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	handler := middleware.RealIP(trusted)(
		middleware.RequestLogger(logger)(middleware.Authenticate(manager)(mux)),
	)

	srv := httpserver.New(cfg.AppPort, handler)
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	logger.Info("starting http server",
		"port", cfg.AppPort,
		"env", cfg.Env,
		"rateLimitBackend", cfg.RateLimitBackend,
	)
	return srv.Run(ctx, ln)
}

func runMigrations(ctx context.Context, cfg config.Config, args []string) error {
	logger := logging.FromContext(ctx)

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	migrationDir := cfg.MigrationDir
	if !filepath.IsAbs(migrationDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		migrationDir = filepath.Join(wd, migrationDir)
	}

	migrator, err := db.NewMigrator(cfg.DatabaseURL, migrationDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("schema version", "command", command, "version", version, "dirty", dirty)
	return nil
}

func runSeed(ctx context.Context, cfg config.Config, args []string) error {
	count := defaultSeedCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("seed count must be a positive integer, got %q", args[0])
		}
		count = n
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = seed.Run(ctx, repositories.NewPostgresUserRepository(pool), count, int64(count))
	return err
}
