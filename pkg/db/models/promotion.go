package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	dbtypes "github.com/techzonevn/storefront-backend/pkg/db/types"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// Promotion is an admin-managed percentage discount.
type Promotion struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name            string               `gorm:"column:name;not null"`
	Description     *string              `gorm:"column:description"`
	Scope           enums.PromotionScope `gorm:"column:scope;not null"`
	DiscountPercent float64              `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	StartAt         *time.Time           `gorm:"column:start_at"`
	EndAt           *time.Time           `gorm:"column:end_at"`
	ProductIDs      dbtypes.UUIDArray    `gorm:"column:product_ids;type:uuid[];not null;default:'{}'"`
	CustomerTiers   pq.StringArray       `gorm:"column:customer_tiers;type:text[];not null;default:'{}'"`
	IsActive        bool                 `gorm:"column:is_active;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
