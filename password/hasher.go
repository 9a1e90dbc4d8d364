package password

import (
	"errors"
)

const (
	minPassBytes = 10
	maxPassBytes = 100
)

var (
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrUnsupportedHash is returned for hash formats the Hasher does not accept.
	ErrUnsupportedHash = errors.New("unsupported password hash")
)

// Hasher hashes new passwords with argon2id and verifies both argon2id and,
// when allowed, legacy bcrypt hashes.
type Hasher struct {
	argon       *Argon2
	allowBcrypt bool
}

// NewHasher wraps an argon2id configuration. allowBcrypt enables verification
// of legacy bcrypt hashes.
func NewHasher(cfg Config, allowBcrypt bool) (*Hasher, error) {
	a, err := NewArgon2(cfg)
	if err != nil {
		return nil, err
	}
	return &Hasher{argon: a, allowBcrypt: allowBcrypt}, nil
}

// Hash returns an argon2id hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	return h.argon.Hash(password)
}

// Verify checks password against encoded. needsRehash is true when the match
// succeeded against a legacy or weaker hash.
func (h *Hasher) Verify(password, encoded string) (ok bool, needsRehash bool, err error) {
	switch {
	case isArgon2(encoded):
		ok, err = h.argon.Verify(password, encoded)
		if err != nil || !ok {
			return false, false, err
		}
		needsRehash, err = h.argon.NeedsUpgrade(encoded)
		if err != nil {
			return true, false, nil
		}
		return true, needsRehash, nil
	case isBcrypt(encoded):
		if !h.allowBcrypt {
			return false, false, ErrUnsupportedHash
		}
		ok, err = verifyBcrypt(password, encoded)
		if err != nil || !ok {
			return false, false, err
		}
		return true, true, nil
	default:
		return false, false, ErrUnsupportedHash
	}
}

func checkLength(password string) error {
	if len(password) < minPassBytes {
		return errors.New("password must be at least 10 bytes")
	}
	if len(password) > maxPassBytes {
		return errors.New("password must be at most 100 bytes")
	}
	return nil
}
