package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password matching in this system is case-insensitive: the legacy clients
// expect "Abc123" to authenticate against a stored "abc123". The password is
// therefore lowercased before hashing and before comparison, so the observed
// matching behavior survives without storing anything in the clear.

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(plain)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.ToLower(plain)))
}
