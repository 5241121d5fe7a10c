package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PASSWORD LOGIN:
// The vault has a single admin. Its password never lives in the config in
// plain text; `vault hash-password` prints a bcrypt hash that goes into
// ADMIN_PASSWORD_HASH, and POST /login compares against that hash.
//
// Hash format:
//
//	$2a$12$<22-char salt><31-char hash>
//	    ^^ cost: 2^12 rounds, roughly 250ms per check

const defaultCost = 12

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost lets tests use bcrypt.MinCost.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. bcrypt only reads the first 72
// bytes, so longer input is rejected instead of silently truncated.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("auth: password must not be empty")
	}
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against hash in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
