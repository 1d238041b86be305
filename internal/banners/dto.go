package banners

import (
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
)

// CreateBannerRequest is the admin payload for a new banner.
type CreateBannerRequest struct {
	Title    string     `json:"title" validate:"required,max=200"`
	ImageURL string     `json:"image_url" validate:"required,url"`
	LinkURL  *string    `json:"link_url,omitempty" validate:"omitempty,max=500"`
	Position int        `json:"position" validate:"gte=0"`
	IsActive *bool      `json:"is_active,omitempty"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
}

// UpdateBannerRequest patches a banner; nil fields stay unchanged.
type UpdateBannerRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	ImageURL    *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	LinkURL     *string    `json:"link_url,omitempty" validate:"omitempty,max=500"`
	Position    *int       `json:"position,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool      `json:"is_active,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	ClearWindow bool       `json:"clear_window,omitempty"`
}

// BannerDTO is the banner payload.
type BannerDTO struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	LinkURL   *string    `json:"link_url,omitempty"`
	Position  int        `json:"position"`
	IsActive  bool       `json:"is_active"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func FromModel(b models.Banner) BannerDTO {
	return BannerDTO{
		ID:        b.ID,
		Title:     b.Title,
		ImageURL:  b.ImageURL,
		LinkURL:   b.LinkURL,
		Position:  b.Position,
		IsActive:  b.IsActive,
		StartAt:   b.StartAt,
		EndAt:     b.EndAt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
