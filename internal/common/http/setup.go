package http

import (
	"net/http"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, cors CORSConfig, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(CORS(cors)(recovery(TraceIDMiddleware(maxRequestSize(metrics.Wrap(handler))))))
}
