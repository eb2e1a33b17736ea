package security

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// Argon2Hasher hashes passwords into argon2id encoded strings.
type Argon2Hasher struct {
	config argon2.Config
}

// NewArgon2Hasher creates a hasher with the library's default (RFC 9106 recommended) parameters.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{config: argon2.DefaultConfig()}
}

// Hash returns the encoded argon2id hash of password.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// Verify reports whether password matches the encoded hash.
// The comparison is constant time.
func (h *Argon2Hasher) Verify(password, encodedHash string) (bool, error) {
	if encodedHash == "" {
		return false, nil
	}

	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
