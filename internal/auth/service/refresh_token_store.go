package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	authrepo "github.com/AlibekovAA/nexus-admin/backend/internal/auth/repository"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/resilience"
)

type RefreshTokenStoreDeps struct {
	Repo        authrepo.RefreshTokenRepository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Breaker     resilience.Breaker
	Log         *logger.Logger
}

// RefreshTokenStore keeps salted hashes of issued refresh tokens. A raw
// token is found again by verifying it against each of the user's active
// records in turn, so lookup cost grows with the number of live sessions.
type RefreshTokenStore struct {
	repo        authrepo.RefreshTokenRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	breaker     resilience.Breaker
	log         *logger.Logger
}

func NewRefreshTokenStore(deps RefreshTokenStoreDeps) *RefreshTokenStore {
	return &RefreshTokenStore{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		breaker:     deps.Breaker,
		log:         deps.Log,
	}
}

// Persist drops the user's expired records, then stores a hash of rawToken
// that expires ttl from now.
func (s *RefreshTokenStore) Persist(ctx context.Context, userID, rawToken string, ttl time.Duration) (authdomain.RefreshToken, error) {
	now := s.clock.Now()

	var swept int64
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		swept, err = s.repo.DeleteExpiredByUserID(ctx, userID, now)
		return err
	})
	if err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("sweep expired refresh tokens: %w", err)
	}
	if swept > 0 {
		addRefreshTokensExpired(swept)
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"swept":   swept,
			"action":  "refresh_tokens_swept",
		}).Debug("expired refresh tokens removed")
	}

	hash, err := s.hasher.Hash(fingerprint(rawToken))
	if err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("hash refresh token: %w", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("generate refresh token id: %w", err)
	}

	record := authdomain.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, record)
	}); err != nil {
		return authdomain.RefreshToken{}, fmt.Errorf("store refresh token: %w", err)
	}

	incrementRefreshTokensIssued()
	return record, nil
}

// FindMatch returns the id of the user's active record whose hash verifies
// against rawToken.
func (s *RefreshTokenStore) FindMatch(ctx context.Context, userID, rawToken string) (string, bool, error) {
	records, err := s.active(ctx, userID)
	if err != nil {
		return "", false, err
	}

	fp := fingerprint(rawToken)
	for _, record := range records {
		if s.hasher.Verify(fp, record.TokenHash) {
			return record.ID, true, nil
		}
	}
	return "", false, nil
}

// Consume deletes the record. ErrRefreshTokenConsumed means the record was
// already gone, so a concurrent caller spent it first.
func (s *RefreshTokenStore) Consume(ctx context.Context, id string) error {
	deleted, err := s.remove(ctx, id)
	if err != nil {
		return fmt.Errorf("consume refresh token: %w", err)
	}

	if !deleted {
		incrementRefreshTokensReplayed()
		return ErrRefreshTokenConsumed
	}

	incrementRefreshTokensUsed()
	return nil
}

// DeleteAllMatching removes every active record of the user that verifies
// against rawToken and reports how many were removed.
func (s *RefreshTokenStore) DeleteAllMatching(ctx context.Context, userID, rawToken string) (int, error) {
	records, err := s.active(ctx, userID)
	if err != nil {
		return 0, err
	}

	fp := fingerprint(rawToken)
	removed := 0
	for _, record := range records {
		if !s.hasher.Verify(fp, record.TokenHash) {
			continue
		}
		deleted, err := s.remove(ctx, record.ID)
		if err != nil {
			return removed, fmt.Errorf("revoke refresh token: %w", err)
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		addRefreshTokensRevoked(removed)
	}
	return removed, nil
}

// remove deletes one record and reports whether this call deleted it.
func (s *RefreshTokenStore) remove(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.DeleteByID(ctx, id)
		return err
	})
	return deleted, err
}

func (s *RefreshTokenStore) active(ctx context.Context, userID string) ([]authdomain.RefreshToken, error) {
	var records []authdomain.RefreshToken
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.repo.ListActiveByUserID(ctx, userID, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}
	observeScanSize(len(records))
	return records, nil
}

func (s *RefreshTokenStore) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return handleCircuitBreakerError(s.breaker.Call(ctx, fn))
}

// fingerprint reduces the token to a fixed 64 byte input. bcrypt reads only
// the first 72 bytes, and every JWT from this issuer shares its header prefix.
func fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
