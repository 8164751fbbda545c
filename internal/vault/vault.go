// Package vault hashes and verifies journal PIN codes. Hashes are salted and
// one-way; the raw PIN is never stored or returned.
package vault

import (
	"fmt"
	"strings"

	"journals/internal/models"
)

const (
	minPINLength = 4
	maxPINLength = 6

	// AlgorithmBcrypt selects BcryptVault.
	AlgorithmBcrypt = "bcrypt"
	// AlgorithmArgon2id selects Argon2Vault.
	AlgorithmArgon2id = "argon2id"
)

// Verifier checks a raw PIN against a stored hash.
type Verifier interface {
	Verify(raw, hash string) bool
}

// Vault produces and verifies PIN hashes. Implementations are swappable
// without touching callers.
type Vault interface {
	Verifier
	Hash(raw string) (string, error)
}

// New returns the vault for the configured algorithm. cost is the bcrypt
// cost; it is ignored for argon2id.
func New(algorithm string, cost int) (Vault, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		return NewBcryptVault(cost), nil
	case AlgorithmArgon2id:
		return NewArgon2Vault(), nil
	default:
		return nil, fmt.Errorf("unknown PIN hash algorithm %q", algorithm)
	}
}

// ValidatePIN checks that raw is 4-6 ASCII decimal digits.
func ValidatePIN(raw string) error {
	if len(raw) < minPINLength || len(raw) > maxPINLength {
		return models.NewValidationError("PIN must contain 4 to 6 digits")
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return models.NewValidationError("PIN must contain 4 to 6 digits")
		}
	}
	return nil
}

// Clear represents "no PIN configured".
func Clear() *string {
	return nil
}
