package pricing

import (
	"fmt"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// TierPolicy maps lifetime spend (VND) to a customer tier.
type TierPolicy struct {
	Silver  int64
	Gold    int64
	Diamond int64
}

// DefaultTierPolicy uses the standard 5M / 20M / 50M thresholds.
var DefaultTierPolicy = TierPolicy{Silver: 5_000_000, Gold: 20_000_000, Diamond: 50_000_000}

// NewTierPolicy validates configured thresholds.
func NewTierPolicy(cfg config.PricingConfig) (TierPolicy, error) {
	p := TierPolicy{Silver: cfg.SilverThreshold, Gold: cfg.GoldThreshold, Diamond: cfg.DiamondThreshold}
	if p.Silver <= 0 || p.Gold <= p.Silver || p.Diamond <= p.Gold {
		return TierPolicy{}, fmt.Errorf("tier thresholds must be strictly increasing")
	}
	return p, nil
}

// TierFor returns the tier for a lifetime spend.
func (p TierPolicy) TierFor(spend int64) enums.CustomerTier {
	switch {
	case spend >= p.Diamond:
		return enums.CustomerTierDiamond
	case spend >= p.Gold:
		return enums.CustomerTierGold
	case spend >= p.Silver:
		return enums.CustomerTierSilver
	default:
		return enums.CustomerTierBronze
	}
}

// NextTier returns the next tier above spend and the amount still needed.
// ok is false at the top tier.
func (p TierPolicy) NextTier(spend int64) (next enums.CustomerTier, remaining int64, ok bool) {
	switch p.TierFor(spend) {
	case enums.CustomerTierBronze:
		return enums.CustomerTierSilver, p.Silver - spend, true
	case enums.CustomerTierSilver:
		return enums.CustomerTierGold, p.Gold - spend, true
	case enums.CustomerTierGold:
		return enums.CustomerTierDiamond, p.Diamond - spend, true
	default:
		return "", 0, false
	}
}
