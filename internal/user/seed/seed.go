package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

type Account struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// DefaultAccounts are the accounts a fresh dashboard starts with.
var DefaultAccounts = []Account{
	{Email: "admin@nexus.com", Password: "Admin123!", FirstName: "System", LastName: "Admin", Role: domain.RoleAdmin},
	{Email: "user@nexus.com", Password: "User123!", FirstName: "John", LastName: "Doe", Role: domain.RoleUser},
}

type Seeder struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewSeeder(repo userrepo.Repository, hasher commoncrypto.PasswordHasher, idGenerator commoncrypto.IDGenerator, clock clock.Clock, log *logger.Logger) *Seeder {
	return &Seeder{repo: repo, hasher: hasher, idGenerator: idGenerator, clock: clock, log: log}
}

// Run creates every account whose email is not taken yet. Existing
// accounts are left as they are. It returns how many were created.
func (s *Seeder) Run(ctx context.Context, accounts []Account) (int, error) {
	created := 0
	for _, account := range accounts {
		ok, err := s.ensure(ctx, account)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", account.Email, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *Seeder) ensure(ctx context.Context, account Account) (bool, error) {
	email := domain.NormalizeEmail(account.Email)

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		s.log.Infof("account %s already exists, skipping", email)
		return false, nil
	}
	if !errors.Is(err, userrepo.ErrUserNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return false, err
	}
	id, err := s.idGenerator.NewID()
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	err = s.repo.Create(ctx, domain.User{
		ID:           domain.ID(id),
		Email:        email,
		PasswordHash: hash,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Role:         account.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Infof("account %s created with role %s", email, account.Role)
	return true, nil
}
