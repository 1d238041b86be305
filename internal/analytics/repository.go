package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// Repository runs the reporting aggregates over orders and order items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
	Amount int64
}

// CountByStatus groups orders created in [from, to) by status with their summed totals.
func (r *Repository) CountByStatus(ctx context.Context, from, to time.Time) ([]statusCount, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// TopProducts ranks products by units sold on non-cancelled orders created in [from, to).
func (r *Repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id AS product_id, MAX(oi.name) AS name, SUM(oi.qty) AS quantity, SUM(oi.line_total) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Where("o.status <> ?", enums.OrderStatusCancelled).
		Group("oi.product_id").
		Order("quantity DESC").Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
