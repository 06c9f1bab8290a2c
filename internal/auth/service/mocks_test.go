package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123456789"
	testRefreshSecret = "refresh-secret-refresh-secret-0123456789"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockUserRepo struct {
	createFunc      func(ctx context.Context, user userdomain.User) error
	findByEmailFunc func(ctx context.Context, email string) (userdomain.User, error)
	findByIDFunc    func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

type mockSessionStore struct {
	persistFunc           func(ctx context.Context, userID, rawToken string, ttl time.Duration) (authdomain.RefreshToken, error)
	findMatchFunc         func(ctx context.Context, userID, rawToken string) (string, bool, error)
	consumeFunc           func(ctx context.Context, id string) error
	deleteAllMatchingFunc func(ctx context.Context, userID, rawToken string) (int, error)
}

func (m *mockSessionStore) Persist(ctx context.Context, userID, rawToken string, ttl time.Duration) (authdomain.RefreshToken, error) {
	if m.persistFunc != nil {
		return m.persistFunc(ctx, userID, rawToken, ttl)
	}
	return authdomain.RefreshToken{UserID: userID}, nil
}

func (m *mockSessionStore) FindMatch(ctx context.Context, userID, rawToken string) (string, bool, error) {
	if m.findMatchFunc != nil {
		return m.findMatchFunc(ctx, userID, rawToken)
	}
	return "", false, nil
}

func (m *mockSessionStore) Consume(ctx context.Context, id string) error {
	if m.consumeFunc != nil {
		return m.consumeFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionStore) DeleteAllMatching(ctx context.Context, userID, rawToken string) (int, error) {
	if m.deleteAllMatchingFunc != nil {
		return m.deleteAllMatchingFunc(ctx, userID, rawToken)
	}
	return 0, nil
}

// sequenceIDGenerator hands out id-1, id-2, ...
type sequenceIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

type failingIDGenerator struct{ err error }

func (g failingIDGenerator) NewID() (string, error) { return "", g.err }

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "auth-test", "error")
}

func testIssuer(ids commoncrypto.IDGenerator, clk clock.Clock) *TokenIssuer {
	return NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, ids, clk)
}

func testHasher() commoncrypto.PasswordHasher {
	return commoncrypto.NewBcryptHasher(4)
}

func setupMockedAuthService() (*AuthService, *mockUserRepo, *mockSessionStore, *clock.MockClock) {
	users := &mockUserRepo{}
	store := &mockSessionStore{}
	clk := clock.NewMockClock(testNow)
	ids := &sequenceIDGenerator{}

	svc := NewAuthService(AuthServiceDeps{
		Users:       users,
		Store:       store,
		Issuer:      testIssuer(ids, clk),
		Hasher:      testHasher(),
		IDGenerator: ids,
		Clock:       clk,
		Log:         testLogger(),
	})
	return svc, users, store, clk
}
