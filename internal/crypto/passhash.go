// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns an Argon2id digest of the password with a fresh
// per-user salt, encoded as "salt$hash" (base64url parts).
func HashPassword(password []byte) (string, error) {
	salt, err := RandBytes(16)
	if err != nil {
		return "", err
	}
	hash := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("%s$%s",
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(hash)), nil
}

// VerifyPassword verifies password against an encoded digest.
func VerifyPassword(password []byte, digest string) bool {
	saltPart, hashPart, ok := strings.Cut(digest, "$")
	if !ok {
		return false
	}
	salt, err := base64.RawURLEncoding.DecodeString(saltPart)
	if err != nil {
		return false
	}
	expected, err := base64.RawURLEncoding.DecodeString(hashPart)
	if err != nil {
		return false
	}
	got := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// PlaceholderDigest generates an unusable credential for accounts
// provisioned through an external identity provider, where no password
// was ever supplied. The underlying password is random and discarded.
func PlaceholderDigest() (string, error) {
	random, err := RandBytes(32)
	if err != nil {
		return "", err
	}
	return HashPassword(random)
}
