package pricing

import (
	"slices"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// Applies reports whether a promotion targets the product or tier.
func Applies(p Promotion, productID uuid.UUID, tier *enums.CustomerTier) bool {
	switch p.Scope {
	case enums.PromotionScopeGlobal:
		return true
	case enums.PromotionScopeProduct:
		return slices.Contains(p.ProductIDs, productID)
	case enums.PromotionScopeCustomerTier:
		return tier != nil && slices.Contains(p.CustomerTiers, *tier)
	default:
		return false
	}
}

// Match returns the best applicable promotion or nil. The winner is the
// applicable promotion ranked first by ComparePromotions, so the result does
// not depend on the order of promos.
func Match(promos []Promotion, productID uuid.UUID, tier *enums.CustomerTier) *Promotion {
	var best *Promotion
	for i := range promos {
		if !Applies(promos[i], productID, tier) {
			continue
		}
		if best == nil || ComparePromotions(promos[i], *best) < 0 {
			candidate := promos[i]
			best = &candidate
		}
	}
	return best
}
