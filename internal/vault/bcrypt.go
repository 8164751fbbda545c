package vault

import (
	"golang.org/x/crypto/bcrypt"

	"journals/internal/models"
)

// BcryptVault hashes PINs with bcrypt. bcrypt embeds a random salt in every
// hash and compares in constant time.
type BcryptVault struct {
	cost int
}

// NewBcryptVault returns a BcryptVault. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcryptVault(cost int) *BcryptVault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVault{cost: cost}
}

// Hash validates raw and returns its bcrypt hash.
func (v *BcryptVault) Hash(raw string) (string, error) {
	if err := ValidatePIN(raw); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), v.cost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// Verify reports whether raw produced hash.
func (v *BcryptVault) Verify(raw, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
