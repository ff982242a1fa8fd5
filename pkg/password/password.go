// Package password hashes and verifies user passwords with PBKDF2-SHA256.
// The stored blob is base64 of: version(1) | iterations(4, big-endian) |
// salt(16) | derived key(32). Verification fails closed on any malformed blob.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	formatVersion     = 1
	defaultIterations = 100_000
	saltLength        = 16
	keyLength         = 32
)

// Hash derives a salted key from the plaintext password and encodes it for
// storage. The plaintext is never persisted.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plaintext), salt, defaultIterations, keyLength, sha256.New)

	blob := make([]byte, 1+4+saltLength+keyLength)
	blob[0] = formatVersion
	binary.BigEndian.PutUint32(blob[1:5], defaultIterations)
	copy(blob[5:5+saltLength], salt)
	copy(blob[5+saltLength:], key)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed or
// unknown-version blobs verify as false, never as an error.
func Verify(encoded, plaintext string) bool {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	if len(blob) != 1+4+saltLength+keyLength {
		return false
	}
	if blob[0] != formatVersion {
		return false
	}

	iterations := binary.BigEndian.Uint32(blob[1:5])
	if iterations == 0 || iterations > 10_000_000 {
		return false
	}

	salt := blob[5 : 5+saltLength]
	want := blob[5+saltLength:]

	got := pbkdf2.Key([]byte(plaintext), salt, int(iterations), keyLength, sha256.New)
	return subtle.ConstantTimeCompare(want, got) == 1
}
