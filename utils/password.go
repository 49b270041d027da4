package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Method     = "pbkdf2:sha256"
	pbkdf2Iterations = 600000
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32
)

// HashPassword derives a salted PBKDF2-HMAC-SHA256 hash. The method and
// iteration count are embedded in the stored value so verification is
// self-describing: "pbkdf2:sha256:<iterations>$<salt>$<hex>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("%s:%d$%s$%s", pbkdf2Method, pbkdf2Iterations, saltHex, hex.EncodeToString(key)), nil
}

// CheckPassword reports whether password matches the stored hash.
// Unparseable or foreign-method hashes never match.
func CheckPassword(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	if !strings.HasPrefix(method, pbkdf2Method) {
		return false
	}
	iterations := pbkdf2Iterations
	if idx := strings.LastIndex(method, ":"); idx >= 0 {
		if n, err := strconv.Atoi(method[idx+1:]); err == nil && n > 0 {
			iterations = n
		}
	}

	wantKey, err := hex.DecodeString(want)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(wantKey), sha256.New)
	return subtle.ConstantTimeCompare(got, wantKey) == 1
}
