package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

// Repository persists promotions and serves the pricing loader.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ActivePromotions returns switched-on promotions whose window contains now,
// best discount first. It satisfies pricing.PromotionSource.
func (r *Repository) ActivePromotions(ctx context.Context, now time.Time) ([]pricing.Promotion, error) {
	var rows []models.Promotion
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(start_at IS NULL OR start_at <= ?)", now).
		Where("(end_at IS NULL OR end_at >= ?)", now).
		Order("discount_percent DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]pricing.Promotion, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricing.PromotionFromModel(row))
	}
	return out, nil
}

// Create inserts a promotion.
func (r *Repository) Create(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

// Save writes every column of an existing promotion.
func (r *Repository) Save(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Save(promo).Error
}

// Delete removes a promotion by ID and reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Promotion{})
	return res.RowsAffected > 0, res.Error
}

// FindByID loads a promotion.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// List pages through promotions newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Promotion, error) {
	qb := r.db.WithContext(ctx).Model(&models.Promotion{})
	if filters.Scope != nil {
		qb = qb.Where("scope = ?", *filters.Scope)
	}
	if filters.IsActive != nil {
		qb = qb.Where("is_active = ?", *filters.IsActive)
	}
	if cursor != nil {
		qb = qb.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Promotion
	err := qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}
