package promotions

import (
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// CreatePromotionRequest is the admin payload for a new promotion.
type CreatePromotionRequest struct {
	Name            string               `json:"name" validate:"required,max=160"`
	Description     *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	Scope           enums.PromotionScope `json:"scope" validate:"required,oneof=global product customer_tier"`
	DiscountPercent float64              `json:"discount_percent" validate:"gte=0,lte=100"`
	StartAt         *time.Time           `json:"start_at,omitempty"`
	EndAt           *time.Time           `json:"end_at,omitempty"`
	ProductIDs      []uuid.UUID          `json:"product_ids,omitempty"`
	CustomerTiers   []enums.CustomerTier `json:"customer_tiers,omitempty" validate:"omitempty,dive,oneof=bronze silver gold diamond"`
	IsActive        *bool                `json:"is_active,omitempty"`
}

// UpdatePromotionRequest patches a promotion; nil fields are left unchanged.
type UpdatePromotionRequest struct {
	Name            *string               `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Description     *string               `json:"description,omitempty" validate:"omitempty,max=2000"`
	Scope           *enums.PromotionScope `json:"scope,omitempty" validate:"omitempty,oneof=global product customer_tier"`
	DiscountPercent *float64              `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	StartAt         *time.Time            `json:"start_at,omitempty"`
	EndAt           *time.Time            `json:"end_at,omitempty"`
	ClearWindow     bool                  `json:"clear_window,omitempty"`
	ProductIDs      *[]uuid.UUID          `json:"product_ids,omitempty"`
	CustomerTiers   *[]enums.CustomerTier `json:"customer_tiers,omitempty"`
	IsActive        *bool                 `json:"is_active,omitempty"`
}

// ListFilters narrows the admin promotion list.
type ListFilters struct {
	Scope    *enums.PromotionScope
	IsActive *bool
}

// PromotionDTO is the admin-facing representation of a promotion.
type PromotionDTO struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description,omitempty"`
	Scope           enums.PromotionScope `json:"scope"`
	DiscountPercent float64              `json:"discount_percent"`
	StartAt         *time.Time           `json:"start_at,omitempty"`
	EndAt           *time.Time           `json:"end_at,omitempty"`
	ProductIDs      []uuid.UUID          `json:"product_ids"`
	CustomerTiers   []string             `json:"customer_tiers"`
	IsActive        bool                 `json:"is_active"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FromModel maps a stored promotion to its DTO.
func FromModel(m models.Promotion) PromotionDTO {
	productIDs := append([]uuid.UUID{}, m.ProductIDs...)
	tiers := append([]string{}, m.CustomerTiers...)
	return PromotionDTO{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Scope:           m.Scope,
		DiscountPercent: m.DiscountPercent,
		StartAt:         m.StartAt,
		EndAt:           m.EndAt,
		ProductIDs:      productIDs,
		CustomerTiers:   tiers,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
