package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/validation"
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)
	if traceID != "" {
		w.Header().Set(traceIDHeader, traceID)
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		details := make(map[string]any, len(verr.Fields))
		for field, msg := range verr.Fields {
			details[field] = msg
		}
		h.countError(r, http.StatusBadRequest)
		WriteErrorEnvelope(w, http.StatusBadRequest, CodeValidation, "validation failed", details, traceID)
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, traceID)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error on %s %s", r.Method, r.URL.Path)

	h.countError(r, http.StatusInternalServerError)
	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, domainErr commonerrors.DomainError, traceID string) {
	status := domainErr.HTTPStatus()

	fields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if status >= http.StatusInternalServerError {
		h.log.WithFields(r.Context(), fields).Errorf("domain error: %s", domainErr.Error())
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(r.Context(), fields).Debug("domain error: " + domainErr.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()
	h.countError(r, status)

	WriteErrorEnvelope(w, status, domainErr.Code(), domainErr.Message(), nil, traceID)
}

func (h *ErrorHandler) countError(r *http.Request, status int) {
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
