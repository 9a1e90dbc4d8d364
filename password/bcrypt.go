package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyBcryptCost is the cost accounts were created with before argon2id.
const LegacyBcryptCost = 10

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// verifyBcrypt compares password against a bcrypt hash. A plain mismatch is
// (false, nil); anything else is a malformed hash.
func verifyBcrypt(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrMalformedHash, err)
	}
}

// HashLegacyBcrypt produces a bcrypt hash at [LegacyBcryptCost]. It exists
// for seeding and migration tests; new accounts are hashed with argon2id.
func HashLegacyBcrypt(password string) (string, error) {
	if err := checkLength(password); err != nil {
		return "", err
	}
	if len(password) > 72 {
		return "", errors.New("bcrypt input is limited to 72 bytes")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), LegacyBcryptCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
