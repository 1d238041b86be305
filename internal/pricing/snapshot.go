package pricing

import (
	"time"

	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
)

// Snapshot is the promotion set loaded for one request. It is never shared
// across requests and is safe for concurrent reads.
type Snapshot struct {
	promotions []Promotion
	loadedAt   time.Time
	metrics    *metrics.PricingMetrics
}

// NewSnapshot builds a snapshot from already-loaded promotions, filtering and
// ordering them at now.
func NewSnapshot(promos []Promotion, now time.Time) *Snapshot {
	return &Snapshot{promotions: FilterActive(promos, now), loadedAt: now}
}

// Promotions returns the ordered active promotions.
func (s *Snapshot) Promotions() []Promotion {
	if s == nil {
		return nil
	}
	return append([]Promotion(nil), s.promotions...)
}

// LoadedAt is the evaluation time of the snapshot.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Quote runs matcher, resolver and calculator for one product. A nil snapshot
// prices without promotions.
func (s *Snapshot) Quote(p Product, sel Selection, tier *enums.CustomerTier) Quote {
	var promo *Promotion
	if s != nil {
		promo = Match(s.promotions, p.ID, tier)
	}
	q := Calculate(p, ResolveVariant(p.Variants, sel), promo)
	if s != nil {
		s.metrics.IncQuote(q.AppliedPromotion != nil)
	}
	return q
}

// VariantQuote pairs a variant with its price.
type VariantQuote struct {
	Color    string `json:"color"`
	Capacity string `json:"capacity"`
	Stock    int    `json:"stock"`
	Quote
}

// VariantTable prices every variant of a product in stored order.
func (s *Snapshot) VariantTable(p Product, tier *enums.CustomerTier) []VariantQuote {
	var promo *Promotion
	if s != nil {
		promo = Match(s.promotions, p.ID, tier)
	}
	out := make([]VariantQuote, 0, len(p.Variants))
	for i := range p.Variants {
		v := p.Variants[i]
		q := Calculate(p, &v, promo)
		q.Variant = nil
		out = append(out, VariantQuote{Color: v.Color, Capacity: v.Capacity, Stock: v.Stock, Quote: q})
	}
	return out
}
