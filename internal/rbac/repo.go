package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// PGRoleRepository implements RoleRepository using PostgreSQL.
type PGRoleRepository struct {
	q db.DBTX
}

// NewRoleRepository constructs a PostgreSQL role repository over a pool or tx.
func NewRoleRepository(q db.DBTX) *PGRoleRepository {
	return &PGRoleRepository{q: q}
}

// FindRoleByName fetches a role with its permissions.
func (r *PGRoleRepository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.q.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("rbac: find role %q: %w", name, err)
	}
	perms, err := LoadRolePermissions(ctx, r.q, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

// ListRoles returns all roles ordered by name.
func (r *PGRoleRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list roles: %w", err)
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		perms, err := LoadRolePermissions(ctx, r.q, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

// LoadRolePermissions returns the permissions granted to roleID ordered by code.
func LoadRolePermissions(ctx context.Context, q db.DBTX, roleID uuid.UUID) ([]Permission, error) {
	rows, err := q.Query(ctx, `SELECT p.id, p.name, p.code, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.code`, roleID)
	if err != nil {
		return nil, fmt.Errorf("rbac: load permissions: %w", err)
	}
	defer rows.Close()
	perms := make([]Permission, 0)
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

var _ RoleRepository = (*PGRoleRepository)(nil)
