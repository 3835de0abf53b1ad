package roles

import (
	"context"
	"fmt"
	"sort"

	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]rbac.Role, error)
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles sorted by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	out := make([]Role, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRBAC(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
