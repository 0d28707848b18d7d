package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 16    // Salt size for both verifier and file keys
	KeySize      = 32    // AES-256 key size
	DefaultIters = 65536 // PBKDF2 iterations, must match across derive/verify
)

// KDF derives keys from passwords using PBKDF2-HMAC-SHA256.
//
// The same function backs both the login verifier and per-file encryption
// keys. The two uses must never share a salt: every verifier and every blob
// carries its own independently generated one.
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a KDF with a fresh random salt
func NewKDF() (*KDF, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:       salt,
		Iterations: DefaultIters,
	}, nil
}

// DeriveKey derives a key of the given length from a password.
// Deterministic for identical password, salt and iteration count.
func (k *KDF) DeriveKey(password []byte, length int) []byte {
	return pbkdf2.Key(password, k.Salt, k.Iterations, length, sha256.New)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
