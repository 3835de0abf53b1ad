// Package memstore provides in-memory identity and role stores for tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Store keeps users and roles in maps. WithTx works on a copy that is
// swapped in only when the callback succeeds.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]auth.User
	roles map[string]rbac.Role
	root  *Store
}

// New returns an empty store.
func New() *Store {
	return &Store{users: map[uuid.UUID]auth.User{}, roles: map[string]rbac.Role{}}
}

// Seeded returns a store holding every role of the embedded seed catalogue.
func Seeded() (*Store, error) {
	seed, err := rbac.DefaultSeed()
	if err != nil {
		return nil, err
	}
	s := New()
	perms := make(map[string]rbac.Permission, len(seed.Permissions))
	for _, p := range seed.Permissions {
		perms[p.Code] = rbac.Permission{ID: uuid.New(), Name: p.Name, Code: p.Code, Description: p.Description}
	}
	for _, r := range seed.Roles {
		role := rbac.Role{ID: uuid.New(), Name: r.Name}
		for _, code := range r.Permissions {
			role.Permissions = append(role.Permissions, perms[code])
		}
		s.PutRole(role)
	}
	return s, nil
}

// PutRole inserts or replaces a role.
func (s *Store) PutRole(role rbac.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.Name] = role
}

// DeleteRole removes a role, simulating missing seed data.
func (s *Store) DeleteRole(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, name)
}

// CountByEmail reports how many users carry email.
func (s *Store) CountByEmail(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			n++
		}
	}
	return n
}

// FindByEmail implements auth.Repository.
func (s *Store) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return s.hydrate(u)
		}
	}
	return nil, shared.ErrNotFound
}

// FindByIDAndEmail implements auth.Repository.
func (s *Store) FindByIDAndEmail(_ context.Context, id uuid.UUID, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !strings.EqualFold(u.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.hydrate(u)
}

// Create implements auth.Repository.
func (s *Store) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return shared.ErrDuplicateEmail
		}
	}
	stored := *user
	stored.Role = nil
	s.users[user.ID] = stored
	return nil
}

// Update implements auth.Repository.
func (s *Store) Update(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	stored := *user
	stored.Role = nil
	s.users[user.ID] = stored
	return nil
}

// WithTx implements auth.Repository.
func (s *Store) WithTx(_ context.Context, fn func(auth.Repository) error) error {
	if s.root != nil {
		return fn(s)
	}
	s.mu.Lock()
	tx := &Store{users: maps.Clone(s.users), roles: maps.Clone(s.roles), root: s}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = tx.users
	return nil
}

// FindRoleByName implements rbac.RoleRepository.
func (s *Store) FindRoleByName(_ context.Context, name string) (*rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneRole(role), nil
}

// ListRoles implements rbac.RoleRepository.
func (s *Store) ListRoles(context.Context) ([]rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := slices.Sorted(maps.Keys(s.roles))
	out := make([]rbac.Role, 0, len(names))
	for _, name := range names {
		out = append(out, *cloneRole(s.roles[name]))
	}
	return out, nil
}

func (s *Store) hydrate(u auth.User) (*auth.User, error) {
	for _, role := range s.roles {
		if role.ID == u.RoleID {
			u.Role = cloneRole(role)
			return &u, nil
		}
	}
	return nil, shared.ErrStorage
}

func cloneRole(role rbac.Role) *rbac.Role {
	role.Permissions = slices.Clone(role.Permissions)
	return &role
}

var (
	_ auth.Repository     = (*Store)(nil)
	_ rbac.RoleRepository = (*Store)(nil)
)
