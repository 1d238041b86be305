package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
// Price bounds apply to the quoted final price, promotions and tier included.
type ListFilters struct {
	Query    string `json:"q,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	MinPrice *int64 `json:"min_price,omitempty"`
	MaxPrice *int64 `json:"max_price,omitempty"`
}

// PriceMatches reports whether a quoted final price falls inside the bounds.
func (f ListFilters) PriceMatches(price int64) bool {
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	return f.MaxPrice == nil || price <= *f.MaxPrice
}

// PriceDTO is the pricing block embedded in every catalog response.
type PriceDTO struct {
	BasePrice                int64              `json:"base_price"`
	OriginalPrice            int64              `json:"original_price"`
	FinalPrice               int64              `json:"final_price"`
	EffectiveDiscountPercent int                `json:"effective_discount_percent"`
	AppliedPromotion         *pricing.Promotion `json:"applied_promotion"`
}

func priceFromQuote(q pricing.Quote) PriceDTO {
	return PriceDTO{
		BasePrice:                q.BasePrice,
		OriginalPrice:            q.OriginalPrice,
		FinalPrice:               q.FinalPrice,
		EffectiveDiscountPercent: q.EffectiveDiscountPercent,
		AppliedPromotion:         q.AppliedPromotion,
	}
}

// ProductSummary is a catalog list row.
type ProductSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	Thumbnail *string   `json:"thumbnail,omitempty"`
	Stock     int       `json:"stock"`
	Sold      int       `json:"sold"`
	InStock   bool      `json:"in_stock"`
	Pricing   PriceDTO  `json:"pricing"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantDTO describes one (color, capacity) option.
type VariantDTO struct {
	Color    string   `json:"color"`
	Capacity string   `json:"capacity"`
	Price    int64    `json:"price"`
	Stock    int      `json:"stock"`
	Images   []string `json:"images,omitempty"`
}

// VariantPriceDTO is a row of the per-variant price table.
type VariantPriceDTO struct {
	Color    string   `json:"color"`
	Capacity string   `json:"capacity"`
	Stock    int      `json:"stock"`
	Pricing  PriceDTO `json:"pricing"`
}

// ProductDetail is the product page payload.
type ProductDetail struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Brand           string            `json:"brand"`
	Category        string            `json:"category"`
	Description     *string           `json:"description,omitempty"`
	Price           int64             `json:"price"`
	OldPrice        *int64            `json:"old_price,omitempty"`
	DiscountPercent float64           `json:"discount_percent"`
	Stock           int               `json:"stock"`
	Sold            int               `json:"sold"`
	Colors          []string          `json:"colors"`
	Capacities      []string          `json:"capacities"`
	Images          []string          `json:"images"`
	IsActive        bool              `json:"is_active"`
	Variants        []VariantDTO      `json:"variants"`
	SelectedVariant *VariantDTO       `json:"selected_variant,omitempty"`
	Pricing         PriceDTO          `json:"pricing"`
	VariantPrices   []VariantPriceDTO `json:"variant_prices"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// VariantInput is the admin payload for one variant.
type VariantInput struct {
	Color    string   `json:"color" validate:"max=60"`
	Capacity string   `json:"capacity" validate:"max=60"`
	Price    int64    `json:"price" validate:"gte=0"`
	Stock    int      `json:"stock" validate:"gte=0"`
	Images   []string `json:"images,omitempty" validate:"omitempty,dive,url"`
}

// CreateProductRequest is the admin payload for a new product.
type CreateProductRequest struct {
	Name            string         `json:"name" validate:"required,max=200"`
	Slug            string         `json:"slug,omitempty" validate:"omitempty,max=220"`
	Brand           string         `json:"brand" validate:"required,max=80"`
	Category        string         `json:"category" validate:"required,max=80"`
	Description     *string        `json:"description,omitempty"`
	Price           int64          `json:"price" validate:"gte=0"`
	OldPrice        *int64         `json:"old_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent float64        `json:"discount_percent" validate:"gte=0,lte=100"`
	Stock           int            `json:"stock" validate:"gte=0"`
	Colors          []string       `json:"colors,omitempty"`
	Capacities      []string       `json:"capacities,omitempty"`
	Images          []string       `json:"images,omitempty" validate:"omitempty,dive,url"`
	Variants        []VariantInput `json:"variants,omitempty" validate:"omitempty,dive"`
	IsActive        *bool          `json:"is_active,omitempty"`
}

// UpdateProductRequest patches a product; nil fields are left unchanged.
// A non-nil Variants replaces the whole variant list.
type UpdateProductRequest struct {
	Name            *string         `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Slug            *string         `json:"slug,omitempty" validate:"omitempty,min=1,max=220"`
	Brand           *string         `json:"brand,omitempty" validate:"omitempty,min=1,max=80"`
	Category        *string         `json:"category,omitempty" validate:"omitempty,min=1,max=80"`
	Description     *string         `json:"description,omitempty"`
	Price           *int64          `json:"price,omitempty" validate:"omitempty,gte=0"`
	OldPrice        *int64          `json:"old_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *float64        `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Colors          *[]string       `json:"colors,omitempty"`
	Capacities      *[]string       `json:"capacities,omitempty"`
	Images          *[]string       `json:"images,omitempty"`
	Variants        *[]VariantInput `json:"variants,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
}

// SetStockRequest sets absolute stock for the product or one of its variants.
type SetStockRequest struct {
	Stock    int     `json:"stock" validate:"gte=0"`
	Color    *string `json:"color,omitempty"`
	Capacity *string `json:"capacity,omitempty"`
}

func variantDTO(v models.ProductVariant) VariantDTO {
	return VariantDTO{
		Color:    v.Color,
		Capacity: v.Capacity,
		Price:    v.Price,
		Stock:    v.Stock,
		Images:   append([]string(nil), v.Images...),
	}
}

func summaryFromModel(p models.Product, quote pricing.Quote) ProductSummary {
	var thumb *string
	if len(p.Images) > 0 {
		first := p.Images[0]
		thumb = &first
	}
	return ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Brand:     p.Brand,
		Category:  p.Category,
		Thumbnail: thumb,
		Stock:     p.Stock,
		Sold:      p.Sold,
		InStock:   p.Stock > 0,
		Pricing:   priceFromQuote(quote),
		CreatedAt: p.CreatedAt,
	}
}
