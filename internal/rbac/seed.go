package rbac

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

//go:embed seed/role_permissions.yaml
var defaultSeed []byte

// SeedFile is the declarative role and permission catalogue.
type SeedFile struct {
	Permissions []SeedPermission `yaml:"permissions"`
	Roles       []SeedRole       `yaml:"roles"`
}

// SeedPermission describes one permission row.
type SeedPermission struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SeedRole lists the permission codes granted to a role.
type SeedRole struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

// DefaultSeed parses the embedded catalogue.
func DefaultSeed() (*SeedFile, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("rbac: parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *SeedFile) validate() error {
	codes := make(map[string]struct{}, len(s.Permissions))
	for _, p := range s.Permissions {
		code := normalizePermission(p.Code)
		if code == "" {
			return fmt.Errorf("%w: seed permission without code", shared.ErrConfiguration)
		}
		if _, dup := codes[code]; dup {
			return fmt.Errorf("%w: duplicate seed permission %q", shared.ErrConfiguration, code)
		}
		codes[code] = struct{}{}
	}
	roles := make(map[string]struct{}, len(s.Roles))
	for _, r := range s.Roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return fmt.Errorf("%w: seed role without name", shared.ErrConfiguration)
		}
		if _, dup := roles[name]; dup {
			return fmt.Errorf("%w: duplicate seed role %q", shared.ErrConfiguration, name)
		}
		roles[name] = struct{}{}
		for _, code := range r.Permissions {
			if _, ok := codes[normalizePermission(code)]; !ok {
				return fmt.Errorf("%w: role %q grants unknown permission %q", shared.ErrConfiguration, name, code)
			}
		}
	}
	for _, required := range []string{shared.RoleGuest, shared.RoleUser} {
		if _, ok := roles[required]; !ok {
			return fmt.Errorf("%w: seed is missing role %q", shared.ErrConfiguration, required)
		}
	}
	return nil
}

// Seeder upserts the role catalogue into PostgreSQL.
type Seeder struct {
	pool   *pgxpool.Pool
	seed   *SeedFile
	logger *slog.Logger
}

// NewSeeder constructs a Seeder for seed.
func NewSeeder(pool *pgxpool.Pool, seed *SeedFile, logger *slog.Logger) *Seeder {
	return &Seeder{pool: pool, seed: seed, logger: logger}
}

// Apply upserts permissions, roles and grants in a single transaction.
// Grants are additive; existing grants not in the seed are kept.
func (s *Seeder) Apply(ctx context.Context) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		permIDs := make(map[string]uuid.UUID, len(s.seed.Permissions))
		for _, p := range s.seed.Permissions {
			code := normalizePermission(p.Code)
			var id uuid.UUID
			err := tx.QueryRow(ctx, `INSERT INTO permissions (id, name, code, description)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
				RETURNING id`, uuid.New(), p.Name, code, p.Description).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert permission %q: %w", code, err)
			}
			permIDs[code] = id
		}
		for _, r := range s.seed.Roles {
			name := strings.TrimSpace(r.Name)
			var roleID uuid.UUID
			err := tx.QueryRow(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, uuid.New(), name).Scan(&roleID)
			if err != nil {
				return fmt.Errorf("upsert role %q: %w", name, err)
			}
			for _, code := range r.Permissions {
				if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id)
					VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, permIDs[normalizePermission(code)]); err != nil {
					return fmt.Errorf("grant %q to %q: %w", code, name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rbac: apply seed: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("rbac seed applied", slog.Int("roles", len(s.seed.Roles)), slog.Int("permissions", len(s.seed.Permissions)))
	}
	return nil
}
