package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/validation"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

type fixture struct {
	svc    *Service
	repo   *userrepo.MemoryRepository
	hasher commoncrypto.PasswordHasher
	clock  *clock.MockClock
}

func newFixture() fixture {
	repo := userrepo.NewMemoryRepository()
	hasher := commoncrypto.NewBcryptHasher(4)
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Deps{
		Repo:        repo,
		Hasher:      hasher,
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Clock:       clk,
		Log:         logger.NewWithWriter(io.Discard, "user-test", "error"),
	})
	return fixture{svc: svc, repo: repo, hasher: hasher, clock: clk}
}

func strPtr(s string) *string { return &s }

func TestCreate_DefaultsPasswordAndRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	summary, err := f.svc.Create(ctx, CreateInput{Email: " Bob@X.com", FirstName: "Bob"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if summary.Email != "Bob@X.com" || summary.Role != domain.RoleUser {
		t.Errorf("unexpected summary %+v", summary)
	}

	stored, err := f.repo.FindByID(ctx, summary.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !f.hasher.Verify(constants.DefaultUserPassword, stored.PasswordHash) {
		t.Error("expected default password")
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateInput{Email: "bob@x.com", Role: "ROOT"})
	var verr *validation.Error
	if !errors.As(err, &verr) || !verr.Has("role") {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if _, err := f.svc.Create(ctx, CreateInput{Email: email}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		f.clock.Advance(time.Minute)
	}

	users, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 || users[0].Email != "b@x.com" {
		t.Fatalf("expected newest first, got %+v", users)
	}
}

func TestUpdate_ChangesRoleAndEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	admin := domain.RoleAdmin
	updated, err := f.svc.Update(ctx, created.ID, UpdateInput{Email: strPtr("Robert@X.com"), Role: &admin})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Email != "Robert@X.com" || updated.Role != domain.RoleAdmin {
		t.Errorf("unexpected summary %+v", updated)
	}

	if _, err := f.svc.Update(ctx, "missing", UpdateInput{FirstName: strPtr("X")}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile_EmptyBodyReturnsCurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com", FirstName: "Bob"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	same, err := f.svc.UpdateProfile(ctx, created.ID, ProfileInput{})
	if err != nil || same.FirstName != "Bob" {
		t.Fatalf("unexpected result %+v %v", same, err)
	}

	renamed, err := f.svc.UpdateProfile(ctx, created.ID, ProfileInput{LastName: strPtr(" Builder ")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if renamed.FirstName != "Bob" || renamed.LastName != "Builder" {
		t.Errorf("unexpected summary %+v", renamed)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com", Password: "Original1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = f.svc.ChangePassword(ctx, created.ID, ChangePasswordInput{OldPassword: "wrong-one", NewPassword: "Changed123"})
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}

	if err := f.svc.ChangePassword(ctx, created.ID, ChangePasswordInput{OldPassword: "Original1", NewPassword: "Changed123"}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	stored, _ := f.repo.FindByID(ctx, created.ID)
	if !f.hasher.Verify("Changed123", stored.PasswordHash) {
		t.Error("new password not stored")
	}

	err = f.svc.ChangePassword(ctx, "missing", ChangePasswordInput{OldPassword: "Original1", NewPassword: "Changed123"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, CreateInput{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := f.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := f.svc.Delete(ctx, created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
