package access

import (
	"fmt"
	"strings"

	"journals/internal/models"
	"journals/internal/vault"
)

// UnsetPINPolicy decides the challenge outcome for a private journal that has
// no PIN configured.
type UnsetPINPolicy string

const (
	// UnsetPINAllow lets the challenge succeed when no PIN is set.
	UnsetPINAllow UnsetPINPolicy = "allow"
	// UnsetPINDeny makes the challenge fail when no PIN is set, so only the
	// owner can ever read the journal.
	UnsetPINDeny UnsetPINPolicy = "deny"
)

// ParseUnsetPINPolicy parses a configured policy name. Empty means allow.
func ParseUnsetPINPolicy(raw string) (UnsetPINPolicy, error) {
	switch UnsetPINPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", UnsetPINAllow:
		return UnsetPINAllow, nil
	case UnsetPINDeny:
		return UnsetPINDeny, nil
	default:
		return "", fmt.Errorf("unknown unset-PIN policy %q", raw)
	}
}

// Challenge decides whether pin unlocks j. It is stateless: no attempt is
// recorded and no access is granted here.
//
// A malformed pin is simply invalid; the hash and the submitted value are
// never echoed back.
func Challenge(j *models.Journal, pin string, v vault.Verifier, policy UnsetPINPolicy) (bool, error) {
	if !j.IsPrivate {
		return false, models.NewInvalidRequestError("Journal is not private")
	}
	if !j.HasPIN() {
		return policy != UnsetPINDeny, nil
	}
	if vault.ValidatePIN(pin) != nil {
		return false, nil
	}
	return v.Verify(pin, *j.PINHash), nil
}
