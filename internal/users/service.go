package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// RoleResolver resolves a role by name.
type RoleResolver interface {
	ResolveRole(ctx context.Context, name string) (*rbac.Role, error)
}

// Service handles administrative user role management.
type Service struct {
	repo  auth.Repository
	roles RoleResolver
}

// NewService builds Service instance.
func NewService(repo auth.Repository, roles RoleResolver) *Service {
	return &Service{repo: repo, roles: roles}
}

// UserPermissions returns the account registered under email with its role.
func (s *Service) UserPermissions(ctx context.Context, email string) (UserWithRole, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return UserWithRole{}, fmt.Errorf("%w: user_email is required", shared.ErrValidation)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return UserWithRole{}, wrapLookup(email, err)
	}
	return newUserWithRole(user), nil
}

// AssignRole moves the account registered under email to roleName.
// Unlike bootstrap roles, an unknown requested role is a not-found condition.
func (s *Service) AssignRole(ctx context.Context, email, roleName string) (UserWithRole, error) {
	email = auth.NormalizeEmail(email)
	roleName = strings.TrimSpace(roleName)
	if email == "" {
		return UserWithRole{}, fmt.Errorf("%w: user_email is required", shared.ErrValidation)
	}
	if roleName == "" {
		return UserWithRole{}, fmt.Errorf("%w: role is required", shared.ErrValidation)
	}

	var out UserWithRole
	err := s.repo.WithTx(ctx, func(repo auth.Repository) error {
		user, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return wrapLookup(email, err)
		}
		role, err := s.roles.ResolveRole(ctx, roleName)
		if err != nil {
			if errors.Is(err, rbac.ErrRoleNotFound) {
				return fmt.Errorf("%w: role %q does not exist", shared.ErrNotFound, roleName)
			}
			return err
		}
		user.Role = role
		user.RoleID = role.ID
		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		out = newUserWithRole(user)
		return nil
	})
	if err != nil {
		return UserWithRole{}, fmt.Errorf("users: assign role: %w", err)
	}
	return out, nil
}

func wrapLookup(email string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: user with email %s", shared.ErrNotFound, email)
	}
	return err
}
