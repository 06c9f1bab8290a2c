package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
)

type MemoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]authdomain.RefreshToken
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{tokens: make(map[string]authdomain.RefreshToken)}
}

func (r *MemoryRefreshTokenRepository) Create(_ context.Context, token authdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = token
	return nil
}

func (r *MemoryRefreshTokenRepository) ListActiveByUserID(_ context.Context, userID string, now time.Time) ([]authdomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tokens []authdomain.RefreshToken
	for _, token := range r.tokens {
		if token.UserID == userID && !token.Expired(now) {
			tokens = append(tokens, token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
	return tokens, nil
}

func (r *MemoryRefreshTokenRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[id]; !ok {
		return false, nil
	}
	delete(r.tokens, id)
	return true, nil
}

func (r *MemoryRefreshTokenRepository) DeleteExpiredByUserID(_ context.Context, userID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, token := range r.tokens {
		if token.UserID == userID && token.Expired(now) {
			delete(r.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored records, expired ones included.
func (r *MemoryRefreshTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
