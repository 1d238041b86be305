// Package pricing resolves what a customer pays for a product: which
// promotion applies, which variant was picked and the resulting quote.
// Everything here is pure apart from Loader.Load, which reads one promotion
// snapshot per request.
package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// Promotion is the read-only view of an admin promotion used for matching.
type Promotion struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Scope           enums.PromotionScope `json:"scope"`
	DiscountPercent float64              `json:"discount_percent"`
	StartAt         *time.Time           `json:"start_at,omitempty"`
	EndAt           *time.Time           `json:"end_at,omitempty"`
	ProductIDs      []uuid.UUID          `json:"-"`
	CustomerTiers   []enums.CustomerTier `json:"-"`
	IsActive        bool                 `json:"-"`
	CreatedAt       time.Time            `json:"-"`
}

// ActiveAt reports whether the promotion is switched on and inside its window.
// Both window bounds are inclusive.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.EndAt != nil && p.EndAt.Before(now) {
		return false
	}
	if p.StartAt != nil && p.StartAt.After(now) {
		return false
	}
	return true
}

// Percent returns the discount clamped into [0,100], with NaN treated as 0.
func (p Promotion) Percent() float64 {
	return clampPercent(p.DiscountPercent)
}

// PromotionFromModel converts a stored promotion. Unknown tier labels are dropped.
func PromotionFromModel(m models.Promotion) Promotion {
	tiers := make([]enums.CustomerTier, 0, len(m.CustomerTiers))
	for _, raw := range m.CustomerTiers {
		if tier, err := enums.ParseCustomerTier(raw); err == nil {
			tiers = append(tiers, tier)
		}
	}
	return Promotion{
		ID:              m.ID,
		Name:            m.Name,
		Scope:           m.Scope,
		DiscountPercent: m.DiscountPercent,
		StartAt:         m.StartAt,
		EndAt:           m.EndAt,
		ProductIDs:      append([]uuid.UUID(nil), m.ProductIDs...),
		CustomerTiers:   tiers,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func normalizeOption(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
