package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
)

// deleteTokenScript removes a token hash and its entry in the owner's index
// in one step. It returns 1 only for the caller that actually removed it.
var deleteTokenScript = redis.NewScript(`
local uid = redis.call("HGET", KEYS[1], "user_id")
if not uid then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[1] .. uid, ARGV[2])
return 1
`)

// RedisRefreshTokenRepository stores each token as a hash under
// <prefix>:rt:<id> that expires with the token, and indexes ids per user
// in the set <prefix>:user_rt:<user id>.
type RedisRefreshTokenRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRefreshTokenRepository(client redis.UniversalClient, prefix string) *RedisRefreshTokenRepository {
	if prefix == "" {
		prefix = "nexus"
	}
	return &RedisRefreshTokenRepository{client: client, prefix: prefix}
}

func (r *RedisRefreshTokenRepository) tokenKey(id string) string {
	return r.prefix + ":rt:" + id
}

func (r *RedisRefreshTokenRepository) userIndexPrefix() string {
	return r.prefix + ":user_rt:"
}

func (r *RedisRefreshTokenRepository) userKey(userID string) string {
	return r.userIndexPrefix() + userID
}

func (r *RedisRefreshTokenRepository) Create(ctx context.Context, token authdomain.RefreshToken) error {
	start := time.Now()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := r.tokenKey(token.ID)
		pipe.HSet(ctx, key,
			"user_id", token.UserID,
			"token_hash", token.TokenHash,
			"expires_at", token.ExpiresAt.UnixMilli(),
			"created_at", token.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, token.ExpiresAt)
		pipe.SAdd(ctx, r.userKey(token.UserID), token.ID)
		return nil
	})
	return observeRedis("create", start, err)
}

func (r *RedisRefreshTokenRepository) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]authdomain.RefreshToken, error) {
	start := time.Now()
	tokens, stale, err := r.loadUserTokens(ctx, userID)
	if err != nil {
		return nil, observeRedis("list_active", start, err)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.userKey(userID), toAny(stale)...).Err(); err != nil {
			return nil, observeRedis("list_active", start, err)
		}
	}

	active := tokens[:0]
	for _, token := range tokens {
		if !token.Expired(now) {
			active = append(active, token)
		}
	}
	return active, observeRedis("list_active", start, nil)
}

func (r *RedisRefreshTokenRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	deleted, err := deleteTokenScript.Run(ctx, r.client, []string{r.tokenKey(id)}, r.userIndexPrefix(), id).Int()
	if err != nil {
		return false, observeRedis("delete", start, err)
	}
	return deleted == 1, observeRedis("delete", start, nil)
}

func (r *RedisRefreshTokenRepository) DeleteExpiredByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	start := time.Now()
	tokens, stale, err := r.loadUserTokens(ctx, userID)
	if err != nil {
		return 0, observeRedis("delete_expired", start, err)
	}

	var deleted int64
	for _, token := range tokens {
		if !token.Expired(now) {
			continue
		}
		removed, err := deleteTokenScript.Run(ctx, r.client, []string{r.tokenKey(token.ID)}, r.userIndexPrefix(), token.ID).Int()
		if err != nil {
			return deleted, observeRedis("delete_expired", start, err)
		}
		deleted += int64(removed)
	}

	// Hashes already evicted by their TTL only leave a dangling index entry.
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.userKey(userID), toAny(stale)...).Err(); err != nil {
			return deleted, observeRedis("delete_expired", start, err)
		}
		deleted += int64(len(stale))
	}

	return deleted, observeRedis("delete_expired", start, nil)
}

// loadUserTokens returns the user's stored tokens and the ids whose hash no
// longer exists.
func (r *RedisRefreshTokenRepository) loadUserTokens(ctx context.Context, userID string) ([]authdomain.RefreshToken, []string, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.tokenKey(id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, nil, err
	}

	tokens := make([]authdomain.RefreshToken, 0, len(ids))
	var stale []string
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, nil, err
		}
		if len(fields) == 0 {
			stale = append(stale, ids[i])
			continue
		}
		token, err := decodeToken(ids[i], fields)
		if err != nil {
			return nil, nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, stale, nil
}

func decodeToken(id string, fields map[string]string) (authdomain.RefreshToken, error) {
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("decode refresh token %s expires_at: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("decode refresh token %s created_at: %w", id, err)
	}
	return authdomain.RefreshToken{
		ID:        id,
		UserID:    fields["user_id"],
		TokenHash: fields["token_hash"],
		ExpiresAt: time.UnixMilli(expiresAt),
		CreatedAt: time.UnixMilli(createdAt),
	}, nil
}

func observeRedis(operation string, start time.Time, err error) error {
	metrics.RedisCommandDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisCommandErrors.WithLabelValues(operation).Inc()
		return fmt.Errorf("redis refresh token %s: %w", operation, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
