package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/auth/login", "/auth/login"},
		{"/auth/refresh/", "/auth/refresh"},
		{"/users", "/users"},
		{"/users/me", "/users/me"},
		{"/users/change-password", "/users/change-password"},
		{"/users/3f1c2a9e-8b7d-4c6e-9f01-23456789abcd", "/users/{id}"},
		{"/users/not-a-uuid", "/users/{id}"},
		{"/wp-admin/setup.php", "/{unknown}"},
		{"/health", "/health"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
