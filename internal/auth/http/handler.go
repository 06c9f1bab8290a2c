package http

import (
	"context"
	"net/http"
	"time"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/auth/service"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (authdomain.TokenPair, error)
	Login(ctx context.Context, input service.LoginInput) (authdomain.TokenPair, error)
	Logout(ctx context.Context, userID, rawRefreshToken string)
	Refresh(ctx context.Context, userID, rawRefreshToken string) (authdomain.TokenPair, error)
	Me(ctx context.Context, userID string) (userdomain.Summary, error)
}

type Config struct {
	Cookies        CookieConfig
	RequestTimeout time.Duration
}

type Handler struct {
	auth    AuthService
	cookies CookieConfig
	timeout time.Duration
	errors  *commonhttp.ErrorHandler
	log     *logger.Logger
}

func NewHandler(auth AuthService, cfg Config, log *logger.Logger) *Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Handler{
		auth:    auth,
		cookies: cfg.Cookies,
		timeout: timeout,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
	}
}

// Routes lists the /auth endpoints. Refresh is public to the access guard
// and authenticates by the refresh cookie instead.
func (h *Handler) Routes(decoder jwtverify.Decoder) []jwtverify.Route {
	withTimeout := commonhttp.WithTimeout(h.timeout)
	refreshGuard := jwtverify.RefreshMiddleware(decoder, h.log)

	return []jwtverify.Route{
		{Method: http.MethodPost, Pattern: "/auth/register", Handler: withTimeout(h.register)},
		{Method: http.MethodPost, Pattern: "/auth/login", Handler: withTimeout(h.login)},
		{Method: http.MethodPost, Pattern: "/auth/refresh", Handler: refreshGuard(withTimeout(h.refresh))},
		{Method: http.MethodPost, Pattern: "/auth/logout", RequiredRole: userdomain.RoleUser, Handler: withTimeout(h.logout)},
		{Method: http.MethodGet, Pattern: "/auth/me", RequiredRole: userdomain.RoleUser, Handler: withTimeout(h.me)},
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	pair, err := h.auth.Register(r.Context(), input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair.AccessToken, pair.RefreshToken)
	commonhttp.WriteMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair.AccessToken, pair.RefreshToken)
	commonhttp.WriteMessage(w, http.StatusOK, "Logged in successfully")
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())
	rawToken, _ := jwtverify.RefreshTokenFromContext(r.Context())

	pair, err := h.auth.Refresh(r.Context(), claims.UserID, rawToken)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair.AccessToken, pair.RefreshToken)
	commonhttp.WriteMessage(w, http.StatusOK, "Tokens refreshed")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	var rawToken string
	if cookie, err := r.Cookie(constants.RefreshTokenCookie); err == nil {
		rawToken = cookie.Value
	}

	h.auth.Logout(r.Context(), claims.UserID, rawToken)

	h.cookies.clearTokens(w)
	commonhttp.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	summary, err := h.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, summary)
}
