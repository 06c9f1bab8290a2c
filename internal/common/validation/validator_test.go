package validation

import (
	"errors"
	"strings"
	"testing"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=5"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(signup{Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(signup{Email: "not-an-email", Password: "short", Nickname: "toolong"})

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	for _, field := range []string{"email", "password", "nickname"} {
		if !verr.Has(field) {
			t.Errorf("expected %s to fail validation, got %v", field, verr.Fields)
		}
	}
	if verr.Fields["password"] != "must be at least 8 characters" {
		t.Errorf("unexpected password message %q", verr.Fields["password"])
	}
	if !strings.Contains(verr.Error(), "field 'email' must be a valid email address") {
		t.Errorf("unexpected error text %q", verr.Error())
	}
}

func TestMaxBytesCountsBytesNotRunes(t *testing.T) {
	type secret struct {
		Value string `json:"value" validate:"maxbytes=4"`
	}

	if err := Struct(secret{Value: "abcd"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Struct(secret{Value: "ééé"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error for 6 byte value, got %v", err)
	}
	if verr.Fields["value"] != "must be at most 4 bytes" {
		t.Errorf("unexpected message %q", verr.Fields["value"])
	}
}
