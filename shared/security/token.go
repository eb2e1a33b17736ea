package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ResetTokenBytes is the amount of randomness in a password reset token.
const ResetTokenBytes = 20

// ResetTokens creates one-time reset tokens and the digests that get persisted.
type ResetTokens interface {
	// Generate returns a new raw token and its digest. Only the digest may be stored.
	Generate() (raw, digest string, err error)

	// Digest returns the digest of a raw token.
	Digest(raw string) string
}

type sha256ResetTokens struct{}

// NewResetTokens returns the SHA-256 backed ResetTokens.
func NewResetTokens() ResetTokens {
	return sha256ResetTokens{}
}

func (sha256ResetTokens) Generate() (string, string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	raw := hex.EncodeToString(b)

	return raw, HashResetToken(raw), nil
}

func (sha256ResetTokens) Digest(raw string) string {
	return HashResetToken(raw)
}

// HashResetToken returns the hex SHA-256 of a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
