package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWithCauseStillMatchesSentinel(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := ErrInvalidToken.WithCause(cause)

	if !errors.Is(err, ErrInvalidToken) {
		t.Error("expected wrapped error to match ErrInvalidToken")
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Error("invalid token must be distinguishable from expired token")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestAsDomainErrorThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("refresh: %w", ErrTokenExpired)

	de, ok := AsDomainError(err)
	if !ok {
		t.Fatal("expected domain error")
	}
	if de.HTTPStatus() != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", de.HTTPStatus())
	}
	if de.Code() != "TOKEN_EXPIRED" {
		t.Errorf("expected TOKEN_EXPIRED, got %s", de.Code())
	}
}

func TestWithTraceIDDoesNotMutateSentinel(t *testing.T) {
	traced := ErrInternalError.WithTraceID("abc")

	if traced.TraceID() != "abc" {
		t.Errorf("expected trace id abc, got %q", traced.TraceID())
	}
	if ErrInternalError.TraceID() != "" {
		t.Error("sentinel must stay untouched")
	}
}

func TestAsDomainErrorPlainError(t *testing.T) {
	if _, ok := AsDomainError(errors.New("boom")); ok {
		t.Error("plain error must not be a domain error")
	}
}
