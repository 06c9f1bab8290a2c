package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/db"
)

// RefreshTokenRepository persists refresh token records. DeleteByID reports
// whether this call removed the row, so only one of several concurrent
// callers observes true for the same id.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token authdomain.RefreshToken) error
	ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]authdomain.RefreshToken, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteExpiredByUserID(ctx context.Context, userID string, now time.Time) (int64, error)
}

type PgRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRefreshTokenRepository(pool *pgxpool.Pool) *PgRefreshTokenRepository {
	return &PgRefreshTokenRepository{pool: pool}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token authdomain.RefreshToken) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return db.HandleExecError(err, "create refresh token", start)
}

func (r *PgRefreshTokenRepository) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]authdomain.RefreshToken, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM refresh_tokens
		 WHERE user_id = $1 AND expires_at > $2
		 ORDER BY created_at DESC`,
		userID,
		now,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list active refresh tokens", start)
	}
	defer rows.Close()

	var tokens []authdomain.RefreshToken
	for rows.Next() {
		var token authdomain.RefreshToken
		if err := rows.Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan refresh token", start)
		}
		tokens = append(tokens, token)
	}

	if err := db.HandleQueryError(rows.Err(), nil, "list active refresh tokens", start); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *PgRefreshTokenRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err := db.HandleExecError(err, "delete refresh token", start); err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgRefreshTokenRepository) DeleteExpiredByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1 AND expires_at <= $2`,
		userID,
		now,
	)
	if err := db.HandleExecError(err, "delete expired refresh tokens", start); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
