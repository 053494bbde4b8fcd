// Package password verifies and stores user passwords under the scheme the
// operator selects. Existing deployments keep passwords as plain text, so
// plain stays available next to bcrypt.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Scheme string

const (
	Plain  Scheme = "plain"
	Bcrypt Scheme = "bcrypt"
)

var ErrUnknownScheme = errors.New("unknown password scheme")

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", Plain:
		return Plain, nil
	case Bcrypt:
		return Bcrypt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

type Hasher struct {
	scheme Scheme
}

func NewHasher(scheme Scheme) *Hasher {
	return &Hasher{scheme: scheme}
}

func (h *Hasher) Scheme() Scheme { return h.scheme }

// Hash encodes a password for storage.
func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == Bcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return password, nil
}

// Verify compares a password with a stored value. bcrypt hashes are
// recognised under either scheme so rows can be migrated one at a time.
func (h *Hasher) Verify(stored, password string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if h.scheme == Bcrypt {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
