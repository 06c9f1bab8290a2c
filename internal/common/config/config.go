package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type AuthConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    string `env:"AUTH_HTTP_PORT" envDefault:"4000"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	UserStore         string `env:"USER_STORE" envDefault:"postgres"`
	RefreshTokenStore string `env:"REFRESH_TOKEN_STORE" envDefault:"postgres"`
	DatabaseURL       string `env:"DATABASE_URL"`
	RedisAddr         string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`

	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTokenTTL   time.Duration `env:"JWT_ACCESS_EXPIRATION" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"JWT_REFRESH_EXPIRATION" envDefault:"168h"`

	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`

	RequestTimeout          time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"5s"`
	CircuitBreakerThreshold int32         `env:"CIRCUIT_BREAKER_THRESHOLD" envDefault:"500"`
	CircuitBreakerTimeout   time.Duration `env:"CIRCUIT_BREAKER_TIMEOUT" envDefault:"15s"`
	CircuitBreakerReset     time.Duration `env:"CIRCUIT_BREAKER_RESET" envDefault:"10s"`
}

func (c AuthConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c AuthConfig) NeedsPostgres() bool {
	return c.UserStore == StorePostgres || c.RefreshTokenStore == StorePostgres
}

type SeedConfig struct {
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`
}

func LoadAuthConfig() (AuthConfig, error) {
	var cfg AuthConfig
	if err := env.Parse(&cfg); err != nil {
		return AuthConfig{}, commonerrors.ErrMissingRequiredEnv.WithCause(err)
	}
	if err := cfg.validate(); err != nil {
		return AuthConfig{}, err
	}
	return cfg, nil
}

func LoadSeedConfig() (SeedConfig, error) {
	var cfg SeedConfig
	if err := env.Parse(&cfg); err != nil {
		return SeedConfig{}, commonerrors.ErrMissingRequiredEnv.WithCause(err)
	}
	if err := validateHasher(cfg.PasswordHasher); err != nil {
		return SeedConfig{}, err
	}
	return cfg, nil
}

func (c AuthConfig) validate() error {
	if err := validateJWTSecrets(c.JWTAccessSecret, c.JWTRefreshSecret); err != nil {
		return err
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("token lifetimes must be positive"))
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return commonerrors.ErrInvalidConfig.WithCause(
			fmt.Errorf("access token lifetime %s must be shorter than refresh token lifetime %s", c.AccessTokenTTL, c.RefreshTokenTTL),
		)
	}

	switch c.UserStore {
	case StorePostgres, StoreMemory:
	default:
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unknown USER_STORE %q", c.UserStore))
	}

	switch c.RefreshTokenStore {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unknown REFRESH_TOKEN_STORE %q", c.RefreshTokenStore))
	}

	if c.NeedsPostgres() && c.DatabaseURL == "" {
		return commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("DATABASE_URL"))
	}

	if c.RequestTimeout <= 0 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("AUTH_REQUEST_TIMEOUT must be positive"))
	}

	return validateHasher(c.PasswordHasher)
}

func validateJWTSecrets(access, refresh string) error {
	if len(access) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("JWT_ACCESS_SECRET: got %d bytes", len(access)))
	}
	if len(refresh) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("JWT_REFRESH_SECRET: got %d bytes", len(refresh)))
	}
	if access == refresh {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("access and refresh secrets are identical"))
	}
	return nil
}

func validateHasher(kind string) error {
	switch kind {
	case "bcrypt", "argon2id":
		return nil
	default:
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unknown PASSWORD_HASHER %q", kind))
	}
}
