package enums

import "fmt"

// PromotionScope decides which products/customers a promotion targets.
type PromotionScope string

const (
	PromotionScopeGlobal       PromotionScope = "global"
	PromotionScopeProduct      PromotionScope = "product"
	PromotionScopeCustomerTier PromotionScope = "customer_tier"
)

var validPromotionScopes = []PromotionScope{
	PromotionScopeGlobal,
	PromotionScopeProduct,
	PromotionScopeCustomerTier,
}

// String implements fmt.Stringer.
func (s PromotionScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PromotionScope.
func (s PromotionScope) IsValid() bool {
	for _, candidate := range validPromotionScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePromotionScope converts raw input into a PromotionScope.
func ParsePromotionScope(value string) (PromotionScope, error) {
	for _, candidate := range validPromotionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion scope %q", value)
}
