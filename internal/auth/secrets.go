package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "expenses/pkg/domain-errors"
)

// HashPassword creates a bcrypt hash of password for storage in configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidArgument, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// verifyPassword reports whether password matches hash. Only malformed hashes
// produce an error.
func verifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("could not verify password: %w", err)
}
