package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// RoleResolver resolves bootstrap roles by name.
type RoleResolver interface {
	ResolveRole(ctx context.Context, name string) (*rbac.Role, error)
}

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue(subjectID, email string, ttl time.Duration) (string, error)
}

// WelcomeQueue schedules the welcome notification for a new account.
type WelcomeQueue interface {
	EnqueueWelcome(ctx context.Context, userID uuid.UUID, email, firstName string) error
}

// ServiceParams groups Service collaborators.
type ServiceParams struct {
	Repo     Repository
	Roles    RoleResolver
	Hasher   *Hasher
	Tokens   TokenIssuer
	TokenTTL time.Duration
	Welcome  WelcomeQueue
	Logger   *slog.Logger
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	roles    RoleResolver
	hasher   *Hasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	welcome  WelcomeQueue
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(p ServiceParams) *Service {
	ttl := p.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     p.Repo,
		roles:    p.Roles,
		hasher:   p.Hasher,
		tokens:   p.Tokens,
		tokenTTL: ttl,
		welcome:  p.Welcome,
		logger:   logger,
	}
}

// Register creates an active guest account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: first name, last name and email are required", shared.ErrValidation)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.PasswordConfirm {
		return nil, fmt.Errorf("%w: password confirmation does not match", shared.ErrValidation)
	}

	var created *User
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return shared.ErrDuplicateEmail
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		guest, err := s.roles.ResolveRole(ctx, shared.RoleGuest)
		if err != nil {
			return err
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return err
		}

		user := &User{
			ID:           uuid.New(),
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Patronymic:   strings.TrimSpace(in.Patronymic),
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
		}
		user.assignRole(guest)
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: register: %w", err)
	}

	s.notifyWelcome(ctx, created)
	return created, nil
}

func (s *Service) notifyWelcome(ctx context.Context, user *User) {
	if s.welcome == nil {
		return
	}
	if err := s.welcome.EnqueueWelcome(ctx, user.ID, user.Email, user.FirstName); err != nil {
		s.logger.Warn("enqueue welcome email", slog.String("user_id", user.ID.String()), slog.Any("error", err))
	}
}

// Login verifies credentials, issues a session token and elevates the role.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = NormalizeEmail(email)

	var (
		raw  string
		user *User
	)
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		found, err := repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrInvalidCredentials
			}
			return err
		}
		if !s.hasher.Verify(password, found.PasswordHash) {
			return shared.ErrInvalidCredentials
		}
		if !found.IsActive {
			return shared.ErrInactiveAccount
		}

		raw, err = s.tokens.Issue(found.ID.String(), found.Email, s.tokenTTL)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		if err := s.elevateOnLogin(ctx, repo, found); err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("auth: login: %w", err)
	}
	return raw, user, nil
}

// elevateOnLogin moves the account to the user role. Every login re-applies it.
func (s *Service) elevateOnLogin(ctx context.Context, repo Repository, user *User) error {
	role, err := s.roles.ResolveRole(ctx, shared.RoleUser)
	if err != nil {
		return err
	}
	user.assignRole(role)
	return repo.Update(ctx, user)
}

// UpdateProfile applies the non-nil fields of in to principal.
// Changing the password requires the current password.
func (s *Service) UpdateProfile(ctx context.Context, principal *User, in UpdateProfileInput) (*User, error) {
	var updated *User
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		user, err := repo.FindByIDAndEmail(ctx, principal.ID, principal.Email)
		if err != nil {
			return err
		}

		if in.Password != nil && *in.Password != "" {
			if in.CurrentPassword == nil || !s.hasher.Verify(*in.CurrentPassword, user.PasswordHash) {
				return shared.ErrInvalidPassword
			}
			if err := ValidatePassword(*in.Password); err != nil {
				return err
			}
			if in.PasswordConfirm != nil && *in.PasswordConfirm != *in.Password {
				return fmt.Errorf("%w: password confirmation does not match", shared.ErrValidation)
			}
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		applyString(&user.FirstName, in.FirstName)
		applyString(&user.LastName, in.LastName)
		applyString(&user.Patronymic, in.Patronymic)

		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: update profile: %w", err)
	}
	return updated, nil
}

func applyString(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}

// Logout deactivates the account and demotes it to guest. Issued tokens stay
// signed but fail the gate's active check.
func (s *Service) Logout(ctx context.Context, principal *User) error {
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		user, err := repo.FindByIDAndEmail(ctx, principal.ID, principal.Email)
		if err != nil {
			return err
		}
		return s.demoteOnLogout(ctx, repo, user)
	})
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// demoteOnLogout marks the account inactive and reassigns the guest role.
func (s *Service) demoteOnLogout(ctx context.Context, repo Repository, user *User) error {
	role, err := s.roles.ResolveRole(ctx, shared.RoleGuest)
	if err != nil {
		return err
	}
	user.IsActive = false
	user.assignRole(role)
	return repo.Update(ctx, user)
}

// FindByIDAndEmail resolves a principal for the authorization gate.
func (s *Service) FindByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	return s.repo.FindByIDAndEmail(ctx, id, email)
}

var _ rbac.PrincipalFinder[*User] = (*Service)(nil)
