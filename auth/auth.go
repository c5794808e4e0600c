// Package auth verifies the credentials of the person requesting a
// certification. Only bcrypt hashes are ever configured; plain passwords are
// never stored.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks a user name and password.
type Verifier interface {
	Verify(ctx context.Context, user, password string) error
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, user, password string) error

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, user, password string) error {
	return f(ctx, user, password)
}

// Disabled accepts every request. It is used when no credentials are configured.
var Disabled Verifier = VerifierFunc(func(ctx context.Context, _, _ string) error {
	return ctx.Err()
})

// StaticVerifier accepts a single user with a bcrypt password hash.
type StaticVerifier struct {
	user string
	hash []byte
}

// NewStaticVerifier returns a verifier for one user. The hash must be a bcrypt hash.
func NewStaticVerifier(user, passwordHash string) (*StaticVerifier, error) {
	if user == "" {
		return nil, errors.New("user is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &StaticVerifier{user: user, hash: []byte(passwordHash)}, nil
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(ctx context.Context, user, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(v.user)) == 1
	// Compare the password even for an unknown user to keep timing uniform.
	passErr := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash of password for use in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
