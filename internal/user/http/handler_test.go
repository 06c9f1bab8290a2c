package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/service"
)

const knownID = "5f1c7a52-3f43-4c3e-9d7b-2f6f0f2f9a11"

type mockUserService struct {
	getByIDFunc        func(ctx context.Context, id domain.ID) (domain.Summary, error)
	createFunc         func(ctx context.Context, input service.CreateInput) (domain.Summary, error)
	updateProfileFunc  func(ctx context.Context, id domain.ID, input service.ProfileInput) (domain.Summary, error)
	changePasswordFunc func(ctx context.Context, id domain.ID, input service.ChangePasswordInput) error
	deleteFunc         func(ctx context.Context, id domain.ID) error
}

func (m *mockUserService) GetByID(ctx context.Context, id domain.ID) (domain.Summary, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return domain.Summary{ID: id}, nil
}

func (m *mockUserService) List(context.Context) ([]domain.Summary, error) {
	return []domain.Summary{{ID: knownID, Email: "user@nexus.com"}}, nil
}

func (m *mockUserService) Create(ctx context.Context, input service.CreateInput) (domain.Summary, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, input)
	}
	return domain.Summary{Email: input.Email}, nil
}

func (m *mockUserService) Update(_ context.Context, id domain.ID, _ service.UpdateInput) (domain.Summary, error) {
	return domain.Summary{ID: id}, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id domain.ID, input service.ProfileInput) (domain.Summary, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, input)
	}
	return domain.Summary{ID: id}, nil
}

func (m *mockUserService) ChangePassword(ctx context.Context, id domain.ID, input service.ChangePasswordInput) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, id, input)
	}
	return nil
}

func (m *mockUserService) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type roleDecoder struct{}

func (roleDecoder) Decode(token string, kind jwtverify.TokenKind) (jwtverify.Claims, error) {
	switch token {
	case "admin":
		return jwtverify.Claims{UserID: "admin-id", Email: "admin@nexus.com", Role: domain.RoleAdmin}, nil
	case "user":
		return jwtverify.Claims{UserID: "user-id", Email: "user@nexus.com", Role: domain.RoleUser}, nil
	default:
		return jwtverify.Claims{}, commonerrors.ErrInvalidToken
	}
}

func newTestServer(svc UserService) http.Handler {
	log := logger.NewWithWriter(io.Discard, "user-http-test", "error")
	mux := http.NewServeMux()
	jwtverify.Mount(mux, NewHandler(svc, 0, log).Routes(), roleDecoder{}, log)
	return mux
}

func do(handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouteTable_RoleRequirements(t *testing.T) {
	server := newTestServer(&mockUserService{})

	tests := []struct {
		method string
		path   string
		token  string
		status int
	}{
		{http.MethodGet, "/users/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/users/me", "user", http.StatusOK},
		{http.MethodGet, "/users/me", "admin", http.StatusOK},
		{http.MethodGet, "/users", "user", http.StatusForbidden},
		{http.MethodGet, "/users", "admin", http.StatusOK},
		{http.MethodGet, "/users/" + knownID, "user", http.StatusForbidden},
		{http.MethodGet, "/users/" + knownID, "admin", http.StatusOK},
		{http.MethodDelete, "/users/" + knownID, "user", http.StatusForbidden},
		{http.MethodDelete, "/users/" + knownID, "admin", http.StatusOK},
		{http.MethodPost, "/users", "user", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" as "+tt.token, func(t *testing.T) {
			rec := do(server, tt.method, tt.path, tt.token, map[string]string{"email": "x@x.com"})
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetMe_UsesTokenSubject(t *testing.T) {
	var got domain.ID
	server := newTestServer(&mockUserService{
		getByIDFunc: func(_ context.Context, id domain.ID) (domain.Summary, error) {
			got = id
			return domain.Summary{ID: id}, nil
		},
	})

	rec := do(server, http.MethodGet, "/users/me", "user", nil)
	if rec.Code != http.StatusOK || got != "user-id" {
		t.Fatalf("expected lookup of user-id, got %q (%d)", got, rec.Code)
	}
}

func TestGetByID_InvalidUUID(t *testing.T) {
	rec := do(newTestServer(&mockUserService{}), http.MethodGet, "/users/not-a-uuid", "admin", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	server := newTestServer(&mockUserService{
		getByIDFunc: func(context.Context, domain.ID) (domain.Summary, error) {
			return domain.Summary{}, service.ErrUserNotFound
		},
	})

	rec := do(server, http.MethodGet, "/users/"+knownID, "admin", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChangePassword_IncorrectOldPassword(t *testing.T) {
	server := newTestServer(&mockUserService{
		changePasswordFunc: func(_ context.Context, id domain.ID, input service.ChangePasswordInput) error {
			if id != "user-id" || input.OldPassword != "old" {
				t.Errorf("unexpected args %q %+v", id, input)
			}
			return service.ErrIncorrectPassword
		},
	})

	rec := do(server, http.MethodPatch, "/users/change-password", "user", map[string]string{
		"oldPassword": "old", "newPassword": "NewPassword1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Code != "INCORRECT_PASSWORD" {
		t.Errorf("expected INCORRECT_PASSWORD, got %s", body.Code)
	}
}

func TestCreate_ReturnsCreated(t *testing.T) {
	var got service.CreateInput
	server := newTestServer(&mockUserService{
		createFunc: func(_ context.Context, input service.CreateInput) (domain.Summary, error) {
			got = input
			return domain.Summary{Email: input.Email, Role: input.Role}, nil
		},
	})

	rec := do(server, http.MethodPost, "/users", "admin", map[string]string{"email": "new@nexus.com", "role": "ADMIN"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Email != "new@nexus.com" || got.Role != domain.RoleAdmin {
		t.Errorf("unexpected input %+v", got)
	}
}
