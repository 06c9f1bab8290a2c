package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
)

// HealthCheck probes one backend dependency.
type HealthCheck func(ctx context.Context) error

func HealthHandler(log *logger.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"action":     "health_check_failed",
					"dependency": name,
				}).Warnf("health check failed: %v", err)
				result[name] = "unavailable"
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		WriteJSON(w, status, result)
	}
}
