package jwtverify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

type mockDecoder struct {
	DecodeFunc func(token string, kind TokenKind) (Claims, error)
}

func (m *mockDecoder) Decode(token string, kind TokenKind) (Claims, error) {
	return m.DecodeFunc(token, kind)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "error")
}

func tokenDecoder() *mockDecoder {
	return &mockDecoder{
		DecodeFunc: func(token string, kind TokenKind) (Claims, error) {
			switch {
			case token == "admin-access" && kind == TokenKindAccess:
				return Claims{UserID: "a1", Email: "admin@nexus.com", Role: userdomain.RoleAdmin}, nil
			case token == "user-access" && kind == TokenKindAccess:
				return Claims{UserID: "u1", Email: "user@nexus.com", Role: userdomain.RoleUser}, nil
			case token == "user-refresh" && kind == TokenKindRefresh:
				return Claims{UserID: "u1", Email: "user@nexus.com", Role: userdomain.RoleUser}, nil
			case token == "stale":
				return Claims{}, commonerrors.ErrTokenExpired
			default:
				return Claims{}, commonerrors.ErrInvalidToken
			}
		},
	}
}

func echoClaims() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, claims.UserID)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestMiddlewareReadsAccessCookie(t *testing.T) {
	handler := Middleware(tokenDecoder(), testLogger())(echoClaims())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: "user-access"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "u1" {
		t.Errorf("expected claims of u1, got %q", rec.Body.String())
	}
}

func TestMiddlewareFallsBackToBearer(t *testing.T) {
	handler := Middleware(tokenDecoder(), testLogger())(echoClaims())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer admin-access")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "a1" {
		t.Fatalf("expected 200 for a1, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestMiddlewareRejections(t *testing.T) {
	tests := []struct {
		name     string
		cookie   string
		wantCode string
	}{
		{name: "missing", cookie: "", wantCode: "MISSING_TOKEN"},
		{name: "expired", cookie: "stale", wantCode: "TOKEN_EXPIRED"},
		{name: "garbage", cookie: "garbage", wantCode: "INVALID_TOKEN"},
		{name: "refresh token used as access", cookie: "user-refresh", wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Middleware(tokenDecoder(), testLogger())(echoClaims())

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if got := errorCode(t, rec); got != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, got)
			}
		})
	}
}

func TestRefreshMiddlewareExposesRawToken(t *testing.T) {
	var gotToken string
	handler := RefreshMiddleware(tokenDecoder(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken, _ = RefreshTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: "user-refresh"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotToken != "user-refresh" {
		t.Errorf("expected raw refresh token in context, got %q", gotToken)
	}
}

func TestRefreshMiddlewareIgnoresAccessCookie(t *testing.T) {
	handler := RefreshMiddleware(tokenDecoder(), testLogger())(echoClaims())

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: "user-access"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestParseTokenDistinguishesExpiry(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "user@nexus.com",
		"role":  "USER",
		"iat":   issued.Unix(),
		"exp":   issued.Add(time.Minute).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseToken(token, secret, func() time.Time { return issued })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Role != userdomain.RoleUser || !claims.ExpiresAt.Equal(issued.Add(time.Minute)) {
		t.Errorf("unexpected claims %+v", claims)
	}

	_, err = ParseToken(token, secret, func() time.Time { return issued.Add(2 * time.Minute) })
	if !errors.Is(err, commonerrors.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	_, err = ParseToken(token, []byte(strings.Repeat("x", 32)), func() time.Time { return issued })
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseTokenRejectsUnknownRoleAndAlg(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	now := time.Now()

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "email": "user@nexus.com", "role": "ROOT", "exp": now.Add(time.Minute).Unix(),
	}).SignedString(secret)
	if _, err := ParseToken(badRole, secret, time.Now); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for unknown role, got %v", err)
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "u1", "email": "user@nexus.com", "role": "USER", "exp": now.Add(time.Minute).Unix(),
	}).SignedString(secret)
	if _, err := ParseToken(hs512, secret, time.Now); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for HS512, got %v", err)
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "email": "user@nexus.com", "role": "USER",
	}).SignedString(secret)
	if _, err := ParseToken(noExp, secret, time.Now); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken without exp, got %v", err)
	}
}
