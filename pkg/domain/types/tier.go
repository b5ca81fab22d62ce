package types

import "github.com/m-mizutani/goerr/v2"

// Tier represents a fragment's retention lifecycle stage. Transitions are
// monotonic: active fragments can only be archived, archived fragments can
// only expire, and expired fragments are deleted.
type Tier string

const (
	TierActive  Tier = "active"
	TierArchive Tier = "archive"
	TierExpired Tier = "expired"
)

// AllTiers returns all valid retention tiers
func AllTiers() []Tier {
	return []Tier{TierActive, TierArchive, TierExpired}
}

// IsValid checks if the tier is valid
func (t Tier) IsValid() bool {
	switch t {
	case TierActive, TierArchive, TierExpired:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// CanTransitionTo reports whether moving from t to next is a forward
// transition. Backward moves are never allowed.
func (t Tier) CanTransitionTo(next Tier) bool {
	switch t {
	case TierActive:
		return next == TierArchive
	case TierArchive:
		return next == TierExpired
	default:
		return false
	}
}

// ParseTier parses a string into a Tier
func ParseTier(s string) (Tier, error) {
	tier := Tier(s)
	if !tier.IsValid() {
		return "", goerr.Wrap(ErrInvalidInput, "invalid tier", goerr.V("tier", s))
	}
	return tier, nil
}
