// Package auth guards the API with a single shared HTTP Basic credential.
package auth

import (
	"crypto/subtle"
	"strings"

	dErrors "expenses/pkg/domain-errors"
)

// UserService validates credentials against the one configured user.
type UserService struct {
	username     string
	passwordHash string
}

// NewUserService hashes password once at startup.
func NewUserService(username, password string) (*UserService, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return NewUserServiceFromHash(username, hash)
}

// NewUserServiceFromHash uses a precomputed bcrypt hash.
func NewUserServiceFromHash(username, passwordHash string) (*UserService, error) {
	if strings.TrimSpace(username) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "username is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "password hash is required")
	}
	return &UserService{username: username, passwordHash: passwordHash}, nil
}

// Validate reports whether username and password match the configured user.
// Blank input is an invalid argument rather than a mismatch.
func (s *UserService) Validate(username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, dErrors.New(dErrors.CodeInvalidArgument, "username is required")
	}
	if strings.TrimSpace(password) == "" {
		return false, dErrors.New(dErrors.CodeInvalidArgument, "password is required")
	}
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK, err := verifyPassword(password, s.passwordHash)
	if err != nil {
		return false, err
	}
	return userOK && passOK, nil
}
