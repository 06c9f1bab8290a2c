package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

// MemoryRepository keeps users in process memory. Used for local runs and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[domain.ID]domain.User
	byEmail map[string]domain.ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[domain.ID]domain.User),
		byEmail: make(map[string]domain.ID),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailAlreadyExists
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id domain.ID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.Summary, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user.Summary())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *MemoryRepository) Update(_ context.Context, id domain.ID, changes domain.Changes, now time.Time) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	oldEmail := user.Email
	if changes.Email != nil && *changes.Email != oldEmail {
		if _, taken := r.byEmail[*changes.Email]; taken {
			return domain.User{}, ErrEmailAlreadyExists
		}
	}

	changes.Apply(&user)
	user.UpdatedAt = now

	if user.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[user.Email] = id
	}
	r.byID[id] = user
	return user, nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id domain.ID, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	r.byID[id] = user
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, user.Email)
	return nil
}
