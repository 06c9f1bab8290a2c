package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
)

var (
	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"User not found",
	)

	ErrIncorrectPassword = commonerrors.NewDomainError(
		"INCORRECT_PASSWORD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Incorrect old password",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Email already in use",
	)
)
