package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	authrepo "github.com/AlibekovAA/nexus-admin/backend/internal/auth/repository"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/config"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/db"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/resilience"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

// AuthApp holds the shared infrastructure of the auth service. Which
// backends are opened depends on USER_STORE and REFRESH_TOKEN_STORE.
type AuthApp struct {
	Config      config.AuthConfig
	Log         *logger.Logger
	Clock       clock.Clock
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Breaker     *resilience.CircuitBreaker

	UserRepo         userrepo.Repository
	RefreshTokenRepo authrepo.RefreshTokenRepository

	Pool  *pgxpool.Pool
	Redis *redis.Client
}

type SeedApp struct {
	Config   config.SeedConfig
	Log      *logger.Logger
	Pool     *pgxpool.Pool
	UserRepo userrepo.Repository
	Hasher   commoncrypto.PasswordHasher
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	log, err := initializeLogger("auth")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	hasher, err := commoncrypto.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	clk := clock.NewRealClock()
	app := &AuthApp{
		Config:      cfg,
		Log:         log,
		Clock:       clk,
		Hasher:      hasher,
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  cfg.CircuitBreakerThreshold,
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "storage",
			Logger:     log,
			Now:        clk.Now,
			IgnoredErrors: []error{
				userrepo.ErrUserNotFound,
				userrepo.ErrEmailAlreadyExists,
			},
		}),
	}

	if err := app.openBackends(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *AuthApp) openBackends(ctx context.Context) error {
	cfg := a.Config

	if cfg.NeedsPostgres() {
		if err := db.Migrate(ctx, a.Log, cfg.DatabaseURL); err != nil {
			return err
		}
		pool, err := db.NewPool(ctx, a.Log, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.Pool = pool
	}

	switch cfg.UserStore {
	case config.StorePostgres:
		a.UserRepo = userrepo.NewPgRepository(a.Pool)
	default:
		a.Log.Warn("user store is in memory; accounts are lost on restart")
		a.UserRepo = userrepo.NewMemoryRepository()
	}

	switch cfg.RefreshTokenStore {
	case config.StorePostgres:
		a.RefreshTokenRepo = authrepo.NewPgRefreshTokenRepository(a.Pool)
	case config.StoreRedis:
		client, err := db.NewRedisClient(ctx, a.Log, db.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		a.Redis = client
		a.RefreshTokenRepo = authrepo.NewRedisRefreshTokenRepository(client, constants.RedisKeyPrefix)
	default:
		a.Log.Warn("refresh token store is in memory; sessions are lost on restart")
		a.RefreshTokenRepo = authrepo.NewMemoryRefreshTokenRepository()
	}

	a.Log.Infof("stores: users=%s refresh_tokens=%s", cfg.UserStore, cfg.RefreshTokenStore)
	return nil
}

// HealthChecks reports one check per opened backend.
func (a *AuthApp) HealthChecks() map[string]commonhttp.HealthCheck {
	checks := make(map[string]commonhttp.HealthCheck)
	if a.Pool != nil {
		checks["postgres"] = func(ctx context.Context) error {
			return a.Pool.Ping(ctx)
		}
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *AuthApp) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnf("close redis client: %v", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func NewSeedApp(ctx context.Context) (*SeedApp, error) {
	log, err := initializeLogger("seed")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadSeedConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	hasher, err := commoncrypto.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, log, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &SeedApp{
		Config:   cfg,
		Log:      log,
		Pool:     pool,
		UserRepo: userrepo.NewPgRepository(pool),
		Hasher:   hasher,
	}, nil
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
