package jwtverify

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

// Authorize checks claims against a route's required role. ADMIN routes
// need an ADMIN token; USER routes accept any authenticated role.
func Authorize(claims Claims, required userdomain.Role) error {
	switch required {
	case userdomain.RoleAdmin:
		if claims.Role != userdomain.RoleAdmin {
			return commonerrors.ErrInsufficientRole
		}
		return nil
	case userdomain.RoleUser:
		if !claims.Role.Valid() {
			return commonerrors.ErrInsufficientRole
		}
		return nil
	default:
		return commonerrors.ErrInsufficientRole
	}
}

// Route is one entry of a route table. An empty RequiredRole marks a public
// route; any other value puts the route behind authentication and Authorize.
type Route struct {
	Method       string
	Pattern      string
	RequiredRole userdomain.Role
	Handler      http.Handler
}

// Mount registers every route on mux as "METHOD pattern".
func Mount(mux *http.ServeMux, routes []Route, decoder Decoder, log *logger.Logger) {
	authenticate := Middleware(decoder, log)
	for _, route := range routes {
		handler := route.Handler
		if route.RequiredRole != "" {
			handler = authenticate(requireRole(route.RequiredRole, handler))
		}
		mux.Handle(route.Method+" "+route.Pattern, handler)
	}
}

func requireRole(required userdomain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonerrors.ErrMissingToken.Code(), commonerrors.ErrMissingToken.Message(), nil, commonhttp.TraceIDFromContext(r.Context()))
			return
		}
		if err := Authorize(claims, required); err != nil {
			metrics.AuthorizationDenied.WithLabelValues(string(required)).Inc()
			commonhttp.WriteErrorEnvelope(w, http.StatusForbidden, commonerrors.ErrInsufficientRole.Code(), commonerrors.ErrInsufficientRole.Message(), nil, commonhttp.TraceIDFromContext(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
