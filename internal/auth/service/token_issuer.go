package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/jwtverify"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

type TokenIssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer mints access/refresh pairs. The two kinds are signed with
// different secrets, so neither verifies as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	idGenerator   commoncrypto.IDGenerator
	clock         clock.Clock
}

func NewTokenIssuer(cfg TokenIssuerConfig, idGenerator commoncrypto.IDGenerator, clock clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		idGenerator:   idGenerator,
		clock:         clock,
	}
}

func (ti *TokenIssuer) AccessTTL() time.Duration  { return ti.accessTTL }
func (ti *TokenIssuer) RefreshTTL() time.Duration { return ti.refreshTTL }

func (ti *TokenIssuer) Issue(subject, email string, role userdomain.Role) (authdomain.TokenPair, error) {
	now := ti.clock.Now()

	accessToken, accessExp, err := ti.sign(subject, email, role, now, ti.accessTTL, ti.accessSecret)
	if err != nil {
		return authdomain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshExp, err := ti.sign(subject, email, role, now, ti.refreshTTL, ti.refreshSecret)
	if err != nil {
		return authdomain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	incrementAccessTokensIssued()
	return authdomain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (ti *TokenIssuer) sign(subject, email string, role userdomain.Role, now time.Time, ttl time.Duration, secret []byte) (string, time.Time, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  string(role),
		"jti":   jti,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Unix(expiresAt.Unix(), 0), nil
}

func (ti *TokenIssuer) Decode(token string, kind jwtverify.TokenKind) (jwtverify.Claims, error) {
	secret := ti.accessSecret
	if kind == jwtverify.TokenKindRefresh {
		secret = ti.refreshSecret
	}
	return jwtverify.ParseToken(token, secret, ti.clock.Now)
}
