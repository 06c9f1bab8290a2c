package jwtverify

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
)

type contextKey string

const (
	claimsKey       contextKey = "jwt_claims"
	refreshTokenKey contextKey = "refresh_token"
)

// Middleware authenticates requests by the access_token cookie, falling back
// to an Authorization: Bearer header.
func Middleware(decoder Decoder, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessTokenFromRequest(r)
			claims, ok := authenticate(w, r, decoder, token, TokenKindAccess, log)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RefreshMiddleware authenticates by the refresh_token cookie, verified with
// the refresh secret, and keeps the raw token for the rotation handler.
func RefreshMiddleware(decoder Decoder, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(constants.RefreshTokenCookie); err == nil {
				token = cookie.Value
			}

			claims, ok := authenticate(w, r, decoder, token, TokenKindRefresh, log)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, refreshTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, decoder Decoder, token string, kind TokenKind, log *logger.Logger) (Claims, bool) {
	traceID := commonhttp.TraceIDFromContext(r.Context())

	if token == "" {
		metrics.JWTValidationsFailed.WithLabelValues("missing").Inc()
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonerrors.ErrMissingToken.Code(), commonerrors.ErrMissingToken.Message(), nil, traceID)
		return Claims{}, false
	}

	metrics.JWTValidationsTotal.Inc()
	claims, err := decoder.Decode(token, kind)
	if err != nil {
		reason := "invalid"
		errToWrite := commonerrors.ErrInvalidToken
		if errors.Is(err, commonerrors.ErrTokenExpired) {
			reason = "expired"
			errToWrite = commonerrors.ErrTokenExpired
		}
		metrics.JWTValidationsFailed.WithLabelValues(reason).Inc()

		log.WithFields(r.Context(), logger.Fields{
			"action": "jwt_auth_failed",
			"kind":   kind.String(),
			"path":   r.URL.Path,
			"reason": reason,
		}).Warn("token rejected")

		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, errToWrite.Code(), errToWrite.Message(), nil, traceID)
		return Claims{}, false
	}

	return claims, true
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(constants.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func RefreshTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(refreshTokenKey).(string)
	return token, ok && token != ""
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
