// Package identity issues and validates the lightweight coach identity
// tokens. There are no accounts or passwords; a coach announces a display
// name once and gets a signed token carrying it. The name is what appears in
// note attribution and lock ownership, so it has to be stable and clean.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNameRequired is returned when no coach name was supplied.
	ErrNameRequired = errors.New("coach name is required")
	// ErrNameInvalid is returned for names that would corrupt the flattened
	// notes format or the lock payloads.
	ErrNameInvalid = errors.New("coach name contains invalid characters")
	// ErrTokenInvalid is returned for expired or malformed tokens.
	ErrTokenInvalid = errors.New("invalid identity token")
)

const maxNameLen = 64

// Claim names used in coach identity tokens.
const (
	ClaimCoach = "coach"
)

// Service signs coach identity tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NormalizeName trims and validates a coach display name. The colon is
// rejected because it is the author separator in flattened notes; newlines
// because they would split a flattened entry.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len(name) > maxNameLen {
		return "", ErrNameInvalid
	}
	if strings.ContainsAny(name, ":\n\r") {
		return "", ErrNameInvalid
	}
	return name, nil
}

// Issue returns a signed token for the given coach name, and the normalized
// name actually embedded in it.
func (s *Service) Issue(name string) (token, normalized string, err error) {
	normalized, err = NormalizeName(name)
	if err != nil {
		return "", "", err
	}

	now := s.now()
	claims := jwt.MapClaims{
		ClaimCoach: normalized,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, normalized, nil
}

// Verify parses a raw token and returns the coach name it carries.
func (s *Service) Verify(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	coach, ok := claims[ClaimCoach].(string)
	if !ok || coach == "" {
		return "", ErrTokenInvalid
	}
	return coach, nil
}
