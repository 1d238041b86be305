package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Product carries the fields the calculator reads.
type Product struct {
	ID         uuid.UUID
	Price      int64
	FinalPrice int64
	OldPrice   int64
	Variants   []Variant
}

// ProductFromModel converts a stored product and its variants.
func ProductFromModel(m models.Product) Product {
	p := Product{
		ID:         m.ID,
		Price:      m.Price,
		FinalPrice: m.FinalPrice,
		Variants:   make([]Variant, 0, len(m.Variants)),
	}
	if m.OldPrice != nil {
		p.OldPrice = *m.OldPrice
	}
	for _, v := range m.Variants {
		p.Variants = append(p.Variants, Variant{Color: v.Color, Capacity: v.Capacity, Price: v.Price, Stock: v.Stock})
	}
	return p
}

// Quote is the priced result for one product and selection.
type Quote struct {
	BasePrice                int64      `json:"base_price"`
	OriginalPrice            int64      `json:"original_price"`
	FinalPrice               int64      `json:"final_price"`
	EffectiveDiscountPercent int        `json:"effective_discount_percent"`
	AppliedPromotion         *Promotion `json:"applied_promotion"`
	Variant                  *Variant   `json:"variant,omitempty"`
}

// DiscountFactor is finalPrice/price when the product carries its own markdown,
// otherwise 1.
func DiscountFactor(p Product) decimal.Decimal {
	price, final := nonNegative(p.Price), nonNegative(p.FinalPrice)
	if price > 0 && final > 0 && final < price {
		return decimal.NewFromInt(final).Div(decimal.NewFromInt(price))
	}
	return one
}

// Calculate prices a product given an optional resolved variant and promotion.
// Base and final are each rounded half away from zero; the promotion applies
// to the rounded base.
func Calculate(p Product, variant *Variant, promo *Promotion) Quote {
	unitPrice := nonNegative(p.Price)
	if variant != nil {
		unitPrice = nonNegative(variant.Price)
	}

	base := decimal.NewFromInt(unitPrice).Mul(DiscountFactor(p)).Round(0).IntPart()
	if base <= 0 {
		base = unitPrice
	}

	q := Quote{BasePrice: base, FinalPrice: base}
	if variant != nil {
		v := *variant
		q.Variant = &v
	}
	if promo != nil {
		pct := decimal.NewFromFloat(promo.Percent())
		final := decimal.NewFromInt(base).Mul(one.Sub(pct.Div(hundred))).Round(0).IntPart()
		if final < 0 {
			final = 0
		}
		applied := *promo
		q.FinalPrice = final
		q.AppliedPromotion = &applied
	}

	q.OriginalPrice = unitPrice
	if old := nonNegative(p.OldPrice); old > 0 {
		q.OriginalPrice = old
	}
	q.EffectiveDiscountPercent = EffectiveDiscountPercent(q.FinalPrice, q.OriginalPrice)
	return q
}

// EffectiveDiscountPercent is round((1 - final/original) * 100) clamped to
// [0,100]; 0 when original is not positive.
func EffectiveDiscountPercent(final, original int64) int {
	if original <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(nonNegative(final)).Div(decimal.NewFromInt(original))
	pct := one.Sub(ratio).Mul(hundred).Round(0).IntPart()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(pct)
	}
}

// ProductFinalPrice computes the stored finalPrice for an admin-set markdown:
// round(price * (1 - discountPercent/100)).
func ProductFinalPrice(price int64, discountPercent float64) int64 {
	price = nonNegative(price)
	pct := decimal.NewFromFloat(clampPercent(discountPercent))
	return decimal.NewFromInt(price).Mul(one.Sub(pct.Div(hundred))).Round(0).IntPart()
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
