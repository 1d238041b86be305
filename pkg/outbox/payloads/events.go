package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// OrderLine is the priced line snapshot carried by order events.
type OrderLine struct {
	ProductID   uuid.UUID  `json:"product_id"`
	Name        string     `json:"name"`
	Color       string     `json:"color,omitempty"`
	Capacity    string     `json:"capacity,omitempty"`
	Qty         int        `json:"qty"`
	UnitPrice   int64      `json:"unit_price"`
	LineTotal   int64      `json:"line_total"`
	PromotionID *uuid.UUID `json:"promotion_id,omitempty"`
}

// OrderCreatedEvent is emitted when a customer places an order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	UserID        uuid.UUID           `json:"user_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	CustomerTier  enums.CustomerTier  `json:"customer_tier"`
	Subtotal      int64               `json:"subtotal_amount"`
	Discount      int64               `json:"discount_amount"`
	Total         int64               `json:"total_amount"`
	Items         []OrderLine         `json:"items"`
}

// OrderStatusChangedEvent is emitted on every legal status transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uuid.UUID         `json:"user_id"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
	Total       int64             `json:"total_amount"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// StockDepletedEvent is emitted when an order takes a product to zero stock.
type StockDepletedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// PromotionChangedEvent tells downstream caches that pricing inputs moved.
type PromotionChangedEvent struct {
	PromotionID     uuid.UUID            `json:"promotion_id"`
	Action          string               `json:"action"`
	Scope           enums.PromotionScope `json:"scope"`
	DiscountPercent float64              `json:"discount_percent"`
	IsActive        bool                 `json:"is_active"`
}

const (
	PromotionActionCreated = "created"
	PromotionActionUpdated = "updated"
	PromotionActionDeleted = "deleted"
)
