package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
)

type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieConfig) setTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(constants.AccessTokenCookie, accessToken, c.AccessTTL))
	http.SetCookie(w, c.cookie(constants.RefreshTokenCookie, refreshToken, c.RefreshTTL))
}

func (c CookieConfig) clearTokens(w http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookie, constants.RefreshTokenCookie} {
		cookie := c.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c CookieConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
	}
}
