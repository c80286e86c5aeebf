package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CompareLegacyPassword checks a plaintext password kept by records created before hashing.
// Both sides are trimmed.
func CompareLegacyPassword(stored, plain string) bool {
	a := []byte(strings.TrimSpace(stored))
	b := []byte(strings.TrimSpace(plain))
	return len(a) > 0 && subtle.ConstantTimeCompare(a, b) == 1
}
