package enums

import (
	"fmt"
	"strings"
)

// CustomerTier is the loyalty tier derived from a customer's lifetime spend.
type CustomerTier string

const (
	CustomerTierBronze  CustomerTier = "bronze"
	CustomerTierSilver  CustomerTier = "silver"
	CustomerTierGold    CustomerTier = "gold"
	CustomerTierDiamond CustomerTier = "diamond"
)

// ordered lowest to highest; Rank relies on this order.
var validCustomerTiers = []CustomerTier{
	CustomerTierBronze,
	CustomerTierSilver,
	CustomerTierGold,
	CustomerTierDiamond,
}

// String implements fmt.Stringer.
func (t CustomerTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CustomerTier.
func (t CustomerTier) IsValid() bool {
	return t.Rank() >= 0
}

// Rank returns the zero-based position of the tier (bronze=0), or -1 when unknown.
func (t CustomerTier) Rank() int {
	for i, candidate := range validCustomerTiers {
		if candidate == t {
			return i
		}
	}
	return -1
}

// AtLeast reports whether t ranks at or above other.
func (t CustomerTier) AtLeast(other CustomerTier) bool {
	return t.IsValid() && t.Rank() >= other.Rank()
}

// ParseCustomerTier converts raw input into a CustomerTier. Matching ignores case and surrounding spaces.
func ParseCustomerTier(value string) (CustomerTier, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCustomerTiers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer tier %q", value)
}

// CustomerTiers returns every tier, lowest first.
func CustomerTiers() []CustomerTier {
	out := make([]CustomerTier, len(validCustomerTiers))
	copy(out, validCustomerTiers)
	return out
}
