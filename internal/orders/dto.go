package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// CreateOrderItemRequest is one cart line.
type CreateOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     string    `json:"color,omitempty" validate:"max=60"`
	Capacity  string    `json:"capacity,omitempty" validate:"max=60"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   enums.PaymentMethod      `json:"payment_method" validate:"required,oneof=cod vietqr"`
	RecipientName   string                   `json:"recipient_name" validate:"required,max=120"`
	Phone           string                   `json:"phone" validate:"required,vnphone"`
	ShippingAddress string                   `json:"shipping_address" validate:"required,max=500"`
	Note            *string                  `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest moves an order to another status.
type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required,oneof=pending confirmed shipping completed cancelled"`
}

// ListFilters narrow order listings. UserID is set by the caller, never from input.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}

// OrderItemDTO is a priced order line as sold.
type OrderItemDTO struct {
	ProductID       uuid.UUID  `json:"product_id"`
	Name            string     `json:"name"`
	Color           string     `json:"color,omitempty"`
	Capacity        string     `json:"capacity,omitempty"`
	Qty             int        `json:"qty"`
	BasePrice       int64      `json:"base_price"`
	OriginalPrice   int64      `json:"original_price"`
	UnitPrice       int64      `json:"unit_price"`
	DiscountPercent int        `json:"discount_percent"`
	PromotionID     *uuid.UUID `json:"promotion_id,omitempty"`
	LineTotal       int64      `json:"line_total"`
}

// OrderDTO is the order payload returned to customers and admins.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	CustomerTier    enums.CustomerTier  `json:"customer_tier"`
	RecipientName   string              `json:"recipient_name"`
	Phone           string              `json:"phone"`
	ShippingAddress string              `json:"shipping_address"`
	Note            *string             `json:"note,omitempty"`
	SubtotalAmount  int64               `json:"subtotal_amount"`
	DiscountAmount  int64               `json:"discount_amount"`
	TotalAmount     int64               `json:"total_amount"`
	Items           []OrderItemDTO      `json:"items"`
	PaymentURL      *string             `json:"payment_url,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FromModel maps a stored order and its items.
func FromModel(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		CustomerTier:    o.CustomerTier,
		RecipientName:   o.RecipientName,
		Phone:           o.Phone,
		ShippingAddress: o.ShippingAddress,
		Note:            o.Note,
		SubtotalAmount:  o.SubtotalAmount,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		ConfirmedAt:     o.ConfirmedAt,
		CompletedAt:     o.CompletedAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Color:           item.Color,
			Capacity:        item.Capacity,
			Qty:             item.Qty,
			BasePrice:       item.BasePrice,
			OriginalPrice:   item.OriginalPrice,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			PromotionID:     item.PromotionID,
			LineTotal:       item.LineTotal,
		})
	}
	return dto
}
