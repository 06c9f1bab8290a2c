package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authrepo "github.com/AlibekovAA/nexus-admin/backend/internal/auth/repository"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

func setSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", strings.Repeat("a", 32))
	t.Setenv("JWT_REFRESH_SECRET", strings.Repeat("r", 32))
	t.Setenv("LOG_DIR", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestNewAuthApp_MemoryStores(t *testing.T) {
	setSecrets(t)
	t.Setenv("USER_STORE", "memory")
	t.Setenv("REFRESH_TOKEN_STORE", "memory")

	app, err := NewAuthApp(context.Background())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &userrepo.MemoryRepository{}, app.UserRepo)
	assert.IsType(t, &authrepo.MemoryRefreshTokenRepository{}, app.RefreshTokenRepo)
	assert.Nil(t, app.Pool)
	assert.Empty(t, app.HealthChecks())
}

func TestNewAuthApp_RedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	setSecrets(t)
	t.Setenv("USER_STORE", "memory")
	t.Setenv("REFRESH_TOKEN_STORE", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())

	app, err := NewAuthApp(context.Background())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &authrepo.RedisRefreshTokenRepository{}, app.RefreshTokenRepo)

	checks := app.HealthChecks()
	require.Contains(t, checks, "redis")
	assert.NoError(t, checks["redis"](context.Background()))
}

func TestNewAuthApp_RejectsMissingSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	t.Setenv("LOG_LEVEL", "error")

	_, err := NewAuthApp(context.Background())
	assert.Error(t, err)
}
