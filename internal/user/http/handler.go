package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commonhttp "github.com/AlibekovAA/nexus-admin/backend/internal/common/http"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/service"
)

type UserService interface {
	GetByID(ctx context.Context, id domain.ID) (domain.Summary, error)
	List(ctx context.Context) ([]domain.Summary, error)
	Create(ctx context.Context, input service.CreateInput) (domain.Summary, error)
	Update(ctx context.Context, id domain.ID, input service.UpdateInput) (domain.Summary, error)
	UpdateProfile(ctx context.Context, id domain.ID, input service.ProfileInput) (domain.Summary, error)
	ChangePassword(ctx context.Context, id domain.ID, input service.ChangePasswordInput) error
	Delete(ctx context.Context, id domain.ID) error
}

type Handler struct {
	users   UserService
	timeout time.Duration
	errors  *commonhttp.ErrorHandler
}

func NewHandler(users UserService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = constants.DefaultRequestTimeout
	}
	return &Handler{
		users:   users,
		timeout: requestTimeout,
		errors:  commonhttp.NewErrorHandler(log),
	}
}

func (h *Handler) Routes() []jwtverify.Route {
	withTimeout := commonhttp.WithTimeout(h.timeout)

	return []jwtverify.Route{
		{Method: http.MethodGet, Pattern: "/users/me", RequiredRole: domain.RoleUser, Handler: withTimeout(h.getMe)},
		{Method: http.MethodPatch, Pattern: "/users/me", RequiredRole: domain.RoleUser, Handler: withTimeout(h.updateMe)},
		{Method: http.MethodPatch, Pattern: "/users/change-password", RequiredRole: domain.RoleUser, Handler: withTimeout(h.changePassword)},

		{Method: http.MethodGet, Pattern: "/users", RequiredRole: domain.RoleAdmin, Handler: withTimeout(h.list)},
		{Method: http.MethodPost, Pattern: "/users", RequiredRole: domain.RoleAdmin, Handler: withTimeout(h.create)},
		{Method: http.MethodGet, Pattern: "/users/{id}", RequiredRole: domain.RoleAdmin, Handler: withTimeout(h.get)},
		{Method: http.MethodPatch, Pattern: "/users/{id}", RequiredRole: domain.RoleAdmin, Handler: withTimeout(h.update)},
		{Method: http.MethodDelete, Pattern: "/users/{id}", RequiredRole: domain.RoleAdmin, Handler: withTimeout(h.delete)},
	}
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	summary, err := h.users.GetByID(r.Context(), currentUser(r))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	summary, err := h.users.UpdateProfile(r.Context(), currentUser(r), input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var input service.ChangePasswordInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), currentUser(r), input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	summary, err := h.users.Create(r.Context(), input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, summary)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	summary, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var input service.UpdateInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	summary, err := h.users.Update(r.Context(), id, input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id := r.PathValue("id")
	if err := commonhttp.ValidateUUID(id); err != nil {
		h.errors.HandleError(w, r, err)
		return "", false
	}
	return domain.ID(id), true
}

func currentUser(r *http.Request) domain.ID {
	claims, _ := jwtverify.FromContext(r.Context())
	return domain.ID(claims.UserID)
}
