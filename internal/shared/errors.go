package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated covers missing, invalid or expired tokens and unknown or inactive principals.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid principal lacking the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure. Used for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount is returned by login for deactivated accounts.
	ErrInactiveAccount = errors.New("account is inactive")
	// ErrInvalidPassword indicates the current password did not match during profile update.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrDuplicateEmail occurs when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentialFormat indicates a password violating the password policy.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
	// ErrValidation indicates malformed request input.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration indicates missing seed data or configuration. Never user caused.
	ErrConfiguration = errors.New("configuration error")
	// ErrStorage wraps failures reported by the backing store.
	ErrStorage = errors.New("storage error")
)
