package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// Order is a placed customer order. Amounts are whole VND and frozen at creation.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null"`
	CustomerTier    enums.CustomerTier  `gorm:"column:customer_tier;not null"`
	RecipientName   string              `gorm:"column:recipient_name;not null"`
	Phone           string              `gorm:"column:phone;not null"`
	ShippingAddress string              `gorm:"column:shipping_address;not null"`
	Note            *string             `gorm:"column:note"`
	SubtotalAmount  int64               `gorm:"column:subtotal_amount;not null"`
	DiscountAmount  int64               `gorm:"column:discount_amount;not null"`
	TotalAmount     int64               `gorm:"column:total_amount;not null"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt     *time.Time          `gorm:"column:confirmed_at"`
	CompletedAt     *time.Time          `gorm:"column:completed_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots the price a line was sold at.
type OrderItem struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	Name            string     `gorm:"column:name;not null"`
	Color           string     `gorm:"column:color;not null;default:''"`
	Capacity        string     `gorm:"column:capacity;not null;default:''"`
	Qty             int        `gorm:"column:qty;not null"`
	BasePrice       int64      `gorm:"column:base_price;not null"`
	OriginalPrice   int64      `gorm:"column:original_price;not null"`
	UnitPrice       int64      `gorm:"column:unit_price;not null"`
	DiscountPercent int        `gorm:"column:discount_percent;not null;default:0"`
	PromotionID     *uuid.UUID `gorm:"column:promotion_id;type:uuid"`
	LineTotal       int64      `gorm:"column:line_total;not null"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
