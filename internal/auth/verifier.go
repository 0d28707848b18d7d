package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/live-labs/filelocker/internal/crypto"
)

// HashSize is the PBKDF2 verifier hash length
const HashSize = 32

var ErrMalformedVerifier = errors.New("malformed stored verifier")

// Verifier is the stored (salt, hash) pair used to check a password without
// retaining it.
type Verifier struct {
	Salt []byte
	Hash []byte
}

// NewVerifier derives a verifier for a password under a fresh random salt
func NewVerifier(password []byte) (*Verifier, error) {
	kdf, err := crypto.NewKDF()
	if err != nil {
		return nil, err
	}
	return &Verifier{
		Salt: kdf.Salt,
		Hash: kdf.DeriveKey(password, HashSize),
	}, nil
}

// Matches re-derives a hash from the candidate password using the stored
// salt and compares it in constant time.
func (v *Verifier) Matches(password []byte) bool {
	kdf := &crypto.KDF{Salt: v.Salt, Iterations: crypto.DefaultIters}
	test := kdf.DeriveKey(password, HashSize)
	defer crypto.ClearBytes(test)
	return crypto.ConstantTimeCompare(v.Hash, test)
}

// Encode serializes the verifier as "<base64 salt>:<base64 hash>"
func (v *Verifier) Encode() string {
	return base64.StdEncoding.EncodeToString(v.Salt) + ":" +
		base64.StdEncoding.EncodeToString(v.Hash)
}

// ParseVerifier decodes a stored "<base64 salt>:<base64 hash>" entry
func ParseVerifier(s string) (*Verifier, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, ErrMalformedVerifier
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerifier, err)
	}
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerifier, err)
	}
	return &Verifier{Salt: salt, Hash: hash}, nil
}
