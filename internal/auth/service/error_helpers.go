package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
)

func handleCircuitBreakerError(err error) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	return err
}

func newInternalError(code, message string, cause error) error {
	if _, ok := commonerrors.AsDomainError(cause); ok {
		return cause
	}
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		return err.WithCause(cause)
	}
	return err
}
