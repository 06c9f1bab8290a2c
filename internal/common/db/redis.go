package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server once.
func NewRedisClient(ctx context.Context, log *logger.Logger, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: constants.RedisDialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	log.Infof("redis client connected: addr=%s db=%d", cfg.Addr, cfg.DB)
	return client, nil
}
