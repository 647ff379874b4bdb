package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Changing these invalidates no stored credentials
// because the salt and derived key are self-contained in the encoded string,
// but verification must keep deriving with the same parameters.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// hashPassword derives a memory-hard digest and encodes it together with its
// random salt as hex(key) + "." + hex(salt).
func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("could not generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("could not derive key: %w", err)
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// verifyPassword re-derives the key with the stored salt and compares in
// constant time. A malformed stored value is treated as a mismatch, not an
// error, so login failures stay indistinguishable to the caller.
func verifyPassword(password, stored string) bool {
	keyHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false
	}

	storedKey, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, storedKey) == 1
}
