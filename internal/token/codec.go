// Package token issues and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates a malformed token, a bad signature or a missing claim.
	ErrInvalidToken = errors.New("token: invalid")
	// ErrExpiredToken indicates the token is past its expiry.
	ErrExpiredToken = errors.New("token: expired")
)

// Claims represents the session token payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Codec issues and decodes HMAC signed session tokens.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a Codec for the given secret and algorithm name.
// Only symmetric HMAC algorithms are supported.
func NewCodec(secret, algorithm string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: secret must be provided")
	}
	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}
	c := &Codec{secret: []byte(secret), method: method, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func hmacMethod(name string) (jwt.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	case "":
		return nil, errors.New("token: algorithm must be provided")
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", name)
	}
}

// Algorithm returns the configured signing algorithm name.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Issue signs a token for the subject that expires ttl after issuance.
func (c *Codec) Issue(subjectID, email string, ttl time.Duration) (string, error) {
	issuedAt := c.now().Truncate(time.Second)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := claims.requireAll(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Claims) requireAll() error {
	switch {
	case c.Subject == "":
		return fmt.Errorf("%w: missing sub", ErrInvalidToken)
	case c.Email == "":
		return fmt.Errorf("%w: missing email", ErrInvalidToken)
	case c.IssuedAt == nil:
		return fmt.Errorf("%w: missing iat", ErrInvalidToken)
	case c.ID == "":
		return fmt.Errorf("%w: missing jti", ErrInvalidToken)
	case c.ExpiresAt == nil:
		return fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	return nil
}
