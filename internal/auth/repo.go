package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Repository defines persistence operations for the auth module.
// Lookups eagerly load the user's role and its permissions.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
	q    db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, q: pool}
}

const selectUser = `SELECT u.id, u.first_name, u.last_name, u.patronymic, u.email, u.password_hash,
	u.is_active, u.role_id, u.registered_at, r.name
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// FindByEmail fetches a user by normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE LOWER(u.email) = LOWER($1)`, email)
}

// FindByIDAndEmail fetches the user matching both identity claims.
func (r *PGRepository) FindByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.id = $1 AND LOWER(u.email) = LOWER($2)`, id, email)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...any) (*User, error) {
	var (
		user     User
		roleName string
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Patronymic, &user.Email, &user.PasswordHash,
		&user.IsActive, &user.RoleID, &user.RegisteredAt, &roleName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", shared.ErrStorage, err)
	}
	perms, err := rbac.LoadRolePermissions(ctx, r.q, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	user.Role = &rbac.Role{ID: user.RoleID, Name: roleName, Permissions: perms}
	return &user, nil
}

// Create inserts a new user. A unique email violation maps to shared.ErrDuplicateEmail.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	err := r.q.QueryRow(ctx, `INSERT INTO users
		(id, first_name, last_name, patronymic, email, password_hash, is_active, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING registered_at`,
		user.ID, user.FirstName, user.LastName, user.Patronymic, user.Email, user.PasswordHash, user.IsActive, user.RoleID,
	).Scan(&user.RegisteredAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicateEmail
		}
		return fmt.Errorf("%w: create user: %v", shared.ErrStorage, err)
	}
	return nil
}

// Update persists the mutable profile, activity and role fields.
func (r *PGRepository) Update(ctx context.Context, user *User) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET
		first_name = $2, last_name = $3, patronymic = $4, password_hash = $5, is_active = $6, role_id = $7
		WHERE id = $1`,
		user.ID, user.FirstName, user.LastName, user.Patronymic, user.PasswordHash, user.IsActive, user.RoleID,
	)
	if err != nil {
		return fmt.Errorf("%w: update user: %v", shared.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// WithTx runs fn against a transaction-scoped repository. Nested calls reuse the
// current transaction. Transactions run at read committed; concurrent writers to
// one user row resolve as last write wins.
func (r *PGRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return db.WithTxOptions(ctx, r.pool, db.RowWriteTxOptions, func(tx pgx.Tx) error {
		return fn(&PGRepository{q: tx})
	})
}

var _ Repository = (*PGRepository)(nil)
