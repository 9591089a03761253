package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength    = 16
	argonTime     = 1
	argonMemory   = 64 * 1024
	argonThreads  = 4
	argonKeyBytes = 32
)

// ErrInvalidSalt is returned when a salt cannot be decoded.
var ErrInvalidSalt = errors.New("invalid salt")

// PasswordHasher derives password hashes with argon2id. The same password and
// salt always produce the same hash.
type PasswordHasher struct {
	time    uint32
	memory  uint32
	threads uint8
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{time: argonTime, memory: argonMemory, threads: argonThreads}
}

// GenSalt returns a random base64 encoded salt.
func (h *PasswordHasher) GenSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

// Hash derives the base64 encoded hash of raw using salt.
func (h *PasswordHasher) Hash(raw, salt string) (string, error) {
	saltBytes, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(saltBytes) == 0 {
		return "", ErrInvalidSalt
	}
	key := argon2.IDKey([]byte(raw), saltBytes, h.time, h.memory, h.threads, argonKeyBytes)
	return base64.RawStdEncoding.EncodeToString(key), nil
}

// Equal compares two encoded hashes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
