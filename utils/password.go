package utils

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 10

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares plain against a stored value. Accounts created
// before hashing was introduced still hold the plaintext; those match with
// legacy set so the caller can upgrade the stored value.
func CheckPassword(stored, plain string) (ok, legacy bool) {
	if stored == "" || plain == "" {
		return false, false
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil {
		return true, false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1 {
		return true, true
	}
	return false, false
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
