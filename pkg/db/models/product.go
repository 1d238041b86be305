package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is a catalog listing. Prices are whole VND.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Slug            string           `gorm:"column:slug;not null;uniqueIndex"`
	Brand           string           `gorm:"column:brand;not null"`
	Category        string           `gorm:"column:category;not null"`
	Description     *string          `gorm:"column:description"`
	Price           int64            `gorm:"column:price;not null"`
	OldPrice        *int64           `gorm:"column:old_price"`
	DiscountPercent float64          `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	FinalPrice      int64            `gorm:"column:final_price;not null"`
	Stock           int              `gorm:"column:stock;not null;default:0"`
	Sold            int              `gorm:"column:sold;not null;default:0"`
	Colors          pq.StringArray   `gorm:"column:colors;type:text[];not null;default:'{}'"`
	Capacities      pq.StringArray   `gorm:"column:capacities;type:text[];not null;default:'{}'"`
	Images          pq.StringArray   `gorm:"column:images;type:text[];not null;default:'{}'"`
	IsActive        bool             `gorm:"column:is_active;not null"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductVariant is a priced (color, capacity) option of a product. Empty
// color and capacity mark the default variant.
type ProductVariant struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Position  int            `gorm:"column:position;not null;default:0"`
	Color     string         `gorm:"column:color;not null;default:''"`
	Capacity  string         `gorm:"column:capacity;not null;default:''"`
	Price     int64          `gorm:"column:price;not null"`
	Stock     int            `gorm:"column:stock;not null;default:0"`
	Images    pq.StringArray `gorm:"column:images;type:text[];not null;default:'{}'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
