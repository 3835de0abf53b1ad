package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

const (
	minPasswordLen = 5
	maxPasswordLen = 64
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}

// ValidatePassword enforces the password shape: 5 to 64 characters and no more
// than 72 bytes, at least one latin letter and one digit, and no Cyrillic
// characters.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d to %d characters", shared.ErrInvalidCredentialFormat, minPasswordLen, maxPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must not exceed %d bytes", shared.ErrInvalidCredentialFormat, maxPasswordBytes)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			return fmt.Errorf("%w: password must not contain cyrillic characters", shared.ErrInvalidCredentialFormat)
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !letter {
		return fmt.Errorf("%w: password must contain a latin letter", shared.ErrInvalidCredentialFormat)
	}
	if !digit {
		return fmt.Errorf("%w: password must contain a digit", shared.ErrInvalidCredentialFormat)
	}
	return nil
}
