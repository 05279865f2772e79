package app

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/circles/backend/internal/auth"
	"github.com/circles/backend/internal/config"
	"github.com/circles/backend/internal/db"
	"github.com/circles/backend/internal/friends"
	"github.com/circles/backend/internal/handlers"
	"github.com/circles/backend/internal/middleware"
	"github.com/circles/backend/internal/repositories"
	"github.com/circles/backend/internal/users"
)

const authLimiterTTL = 10 * time.Minute

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. redisClient may be nil unless the redis rate limit backend is
// configured. The returned manager verifies access tokens for the router.
func buildDependencies(pool db.Pool, redisClient *redis.Client, cfg config.Config) (handlers.Dependencies, *auth.Manager, error) {
	userRepo := repositories.NewPostgresUserRepository(pool)
	friendRepo := repositories.NewPostgresFriendRepository(pool)
	manager := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, repositories.NewPostgresSessionStore(pool))

	limiter, err := newFriendLimiter(cfg, friendRepo, redisClient)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	checks := map[string]handlers.HealthCheck{
		"postgres": pool.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	deps := handlers.Dependencies{
		Users:        userRepo,
		Sessions:     manager,
		Friends:      friends.NewService(friendRepo, userRepo, limiter),
		Directory:    users.NewDirectory(userRepo),
		AuthLimiter:  middleware.NewIPRateLimiter(cfg.AuthRateLimit, time.Minute, cfg.AuthRateBurst, authLimiterTTL),
		HealthChecks: checks,
	}
	return deps, manager, nil
}

func newFriendLimiter(cfg config.Config, counter friends.RequestCounter, redisClient *redis.Client) (friends.Limiter, error) {
	switch cfg.RateLimitBackend {
	case config.RateLimitBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis rate limit backend requires a redis connection")
		}
		return friends.NewRedisLimiter(redisClient, cfg.FriendRequestLimit, cfg.FriendRequestWindow), nil
	default:
		return friends.NewStoreLimiter(counter, cfg.FriendRequestLimit, cfg.FriendRequestWindow), nil
	}
}
