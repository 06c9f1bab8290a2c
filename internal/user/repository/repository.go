package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/db"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	List(ctx context.Context) ([]domain.Summary, error)
	Update(ctx context.Context, id domain.ID, changes domain.Changes, now time.Time) (domain.User, error)
	UpdatePassword(ctx context.Context, id domain.ID, passwordHash string, now time.Time) error
	Delete(ctx context.Context, id domain.ID) error
}

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		string(user.ID),
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		string(user.Role),
		user.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailAlreadyExists
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by email", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list users", start)
	}
	defer rows.Close()

	users := make([]domain.Summary, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "scan user", start)
		}
		users = append(users, user.Summary())
	}

	if err := db.HandleQueryError(rows.Err(), nil, "list users", start); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, changes domain.Changes, now time.Time) (domain.User, error) {
	start := time.Now()

	var role *string
	if changes.Role != nil {
		value := string(*changes.Role)
		role = &value
	}

	row := r.pool.QueryRow(
		ctx,
		`UPDATE users SET
		   email = COALESCE($2, email),
		   first_name = COALESCE($3, first_name),
		   last_name = COALESCE($4, last_name),
		   role = COALESCE($5, role),
		   updated_at = $6
		 WHERE id = $1
		 RETURNING `+userColumns,
		string(id),
		changes.Email,
		changes.FirstName,
		changes.LastName,
		role,
		now,
	)

	user, err := scanUser(row)
	if db.IsUniqueViolation(err) {
		return domain.User{}, ErrEmailAlreadyExists
	}
	if err := db.HandleQueryError(err, ErrUserNotFound, "update user", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) UpdatePassword(ctx context.Context, id domain.ID, passwordHash string, now time.Time) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		string(id),
		passwordHash,
		now,
	)
	if err := db.HandleExecError(err, "update user password", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, string(id))
	if err := db.HandleExecError(err, "delete user", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		id   string
		role string
	)
	err := row.Scan(
		&id,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.ID = domain.ID(id)
	user.Role = domain.Role(role)
	return user, nil
}
