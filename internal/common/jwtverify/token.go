package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

type TokenKind int

const (
	TokenKindAccess TokenKind = iota
	TokenKindRefresh
)

func (k TokenKind) String() string {
	if k == TokenKindRefresh {
		return "refresh"
	}
	return "access"
}

type Claims struct {
	UserID    string
	Email     string
	Role      userdomain.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Decoder verifies a token of the given kind and returns its claims.
type Decoder interface {
	Decode(token string, kind TokenKind) (Claims, error)
}

// ParseToken verifies an HS256 token against secret using now as the
// current time. An elapsed exp yields ErrTokenExpired; every other failure
// yields ErrInvalidToken.
func ParseToken(tokenString string, secret []byte, now func() time.Time) (Claims, error) {
	parsed, err := jwt.Parse(
		tokenString,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, commonerrors.ErrTokenExpired.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, commonerrors.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" || email == "" || !userdomain.Role(role).Valid() {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("missing or malformed claims"))
	}

	claims := Claims{
		UserID:  sub,
		Email:   email,
		Role:    userdomain.Role(role),
		TokenID: jti,
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
