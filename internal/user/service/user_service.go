package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/resilience"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/validation"
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

type Deps struct {
	Repo        userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Breaker     resilience.Breaker
	Log         *logger.Logger
}

// Service manages accounts: the caller's own profile and the admin
// directory.
type Service struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	breaker     resilience.Breaker
	log         *logger.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		breaker:     deps.Breaker,
		log:         deps.Log,
	}
}

type CreateInput struct {
	Email     string      `json:"email" validate:"required,email,max=254"`
	Password  string      `json:"password" validate:"omitempty,min=8,maxbytes=72"`
	FirstName string      `json:"firstName" validate:"omitempty,max=100"`
	LastName  string      `json:"lastName" validate:"omitempty,max=100"`
	Role      domain.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type UpdateInput struct {
	Email     *string      `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string      `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string      `json:"lastName" validate:"omitempty,max=100"`
	Role      *domain.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type ProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required,maxbytes=72"`
	NewPassword string `json:"newPassword" validate:"required,min=8,maxbytes=72"`
}

func (s *Service) GetByID(ctx context.Context, id domain.ID) (domain.Summary, error) {
	var user domain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Summary{}, s.mapRepoError(err, "fetch user")
	}
	return user.Summary(), nil
}

func (s *Service) List(ctx context.Context) ([]domain.Summary, error) {
	var users []domain.Summary
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, s.mapRepoError(err, "list users")
	}
	return users, nil
}

// Create adds an account on behalf of an admin. A missing password falls
// back to constants.DefaultUserPassword and a missing role to USER.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Summary, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if err := validation.Struct(input); err != nil {
		record("create", "invalid")
		return domain.Summary{}, err
	}

	password := input.Password
	if password == "" {
		password = constants.DefaultUserPassword
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		record("create", "error")
		return domain.Summary{}, internalError("HASH_ERROR", "failed to hash password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		record("create", "error")
		return domain.Summary{}, internalError("ID_GENERATION_ERROR", "failed to generate user id", err)
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           domain.ID(id),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, user)
	}); err != nil {
		record("create", "error")
		return domain.Summary{}, s.mapRepoError(err, "create user")
	}

	record("create", "success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"role":    string(user.Role),
		"action":  "user_created",
	}).Info("user created")

	return user.Summary(), nil
}

func (s *Service) Update(ctx context.Context, id domain.ID, input UpdateInput) (domain.Summary, error) {
	if err := validation.Struct(input); err != nil {
		record("update", "invalid")
		return domain.Summary{}, err
	}

	changes := domain.Changes{
		Email:     input.Email,
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		Role:      input.Role,
	}
	if changes.Email != nil {
		email := domain.NormalizeEmail(*changes.Email)
		changes.Email = &email
	}

	summary, err := s.apply(ctx, id, changes)
	if err != nil {
		record("update", "error")
		return domain.Summary{}, err
	}

	record("update", "success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(id),
		"action":  "user_updated",
	}).Info("user updated")
	return summary, nil
}

// UpdateProfile changes the caller's own names. Email and role are not
// reachable from here.
func (s *Service) UpdateProfile(ctx context.Context, id domain.ID, input ProfileInput) (domain.Summary, error) {
	if err := validation.Struct(input); err != nil {
		return domain.Summary{}, err
	}

	return s.apply(ctx, id, domain.Changes{
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
	})
}

func (s *Service) ChangePassword(ctx context.Context, id domain.ID, input ChangePasswordInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	var user domain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return s.mapRepoError(err, "fetch user")
	}

	if !s.hasher.Verify(input.OldPassword, user.PasswordHash) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(id),
			"action":  "change_password_incorrect",
		}).Warn("change password failed: incorrect old password")
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return internalError("HASH_ERROR", "failed to hash password", err)
	}

	if err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.UpdatePassword(ctx, id, hash, s.clock.Now())
	}); err != nil {
		return s.mapRepoError(err, "update password")
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(id),
		"action":  "password_changed",
	}).Info("password changed")
	return nil
}

func (s *Service) Delete(ctx context.Context, id domain.ID) error {
	if err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		record("delete", "error")
		return s.mapRepoError(err, "delete user")
	}

	record("delete", "success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(id),
		"action":  "user_deleted",
	}).Info("user deleted")
	return nil
}

func (s *Service) apply(ctx context.Context, id domain.ID, changes domain.Changes) (domain.Summary, error) {
	if changes.Empty() {
		return s.GetByID(ctx, id)
	}

	var user domain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.Update(ctx, id, changes, s.clock.Now())
		return err
	})
	if err != nil {
		return domain.Summary{}, s.mapRepoError(err, "update user")
	}
	return user.Summary(), nil
}

func (s *Service) mapRepoError(err error, op string) error {
	switch {
	case errors.Is(err, userrepo.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, userrepo.ErrEmailAlreadyExists):
		return ErrEmailTaken
	case errors.Is(err, commonerrors.ErrCircuitOpen):
		return unavailable.WithCause(err)
	}
	if _, ok := commonerrors.AsDomainError(err); ok {
		return err
	}
	s.log.Errorf("%s failed: %v", op, err)
	return internalError("DB_ERROR", "failed to "+op, err)
}

func (s *Service) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return s.breaker.Call(ctx, fn)
}

var unavailable = commonerrors.NewDomainError(
	"SERVICE_UNAVAILABLE",
	commonerrors.CategoryExternal,
	http.StatusServiceUnavailable,
	"service temporarily unavailable",
)

func internalError(code, message string, cause error) error {
	return commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	).WithCause(fmt.Errorf("%s: %w", message, cause))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func record(operation, result string) {
	metrics.UserAdminOperationsTotal.WithLabelValues(operation, result).Inc()
}
