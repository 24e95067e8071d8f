// Package auth implements the shared-password gate in front of the checklist.
// It is a plain comparison against a configured secret: no hashing, lockout
// or expiry.
package auth

import (
	"crypto/subtle"
	"errors"
)

var ErrEmptySecret = errors.New("auth: password must not be empty")

type Gate struct {
	secret []byte
}

func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Gate{secret: []byte(secret)}, nil
}

// Authenticate reports whether input matches the secret.
func (g *Gate) Authenticate(input string) bool {
	return subtle.ConstantTimeCompare([]byte(input), g.secret) == 1
}
