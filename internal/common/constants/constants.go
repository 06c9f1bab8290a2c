package constants

import "time"

const (
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	NameMaxLength      = 100
	EmailMaxLength     = 254
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 20
	DBPoolMinOpenConns    = 2
	DBPoolConnMaxLifetime = 5 * time.Minute
	DBPoolConnMaxIdleTime = 10 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 15 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBMigrateTimeout      = 60 * time.Second

	RedisDialTimeout = 5 * time.Second
	RedisKeyPrefix   = "nexus"

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout       = 30 * time.Second
	DefaultRequestTimeout = 5 * time.Second

	DefaultCircuitBreakerThreshold = 500
	DefaultCircuitBreakerTimeout   = 15 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	DefaultBcryptCost = 10

	// Seeded and admin-created accounts fall back to this password.
	DefaultUserPassword = "Password123!"

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
