package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Invalid credentials",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Email already in use",
	)

	ErrAccessDenied = commonerrors.NewDomainError(
		"ACCESS_DENIED",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"Access Denied",
	)

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)

	// ErrRefreshTokenConsumed means another caller deleted the matched record
	// first.
	ErrRefreshTokenConsumed = errors.New("refresh token already consumed")
)
