package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

// Repository persists catalog products and their variants.
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

func preloadVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

// Create inserts the product together with its variants.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save writes every scalar column of an existing product. Variants are left alone.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// ReplaceVariants swaps the full variant list of a product.
func (r *Repository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	for i := range variants {
		variants[i].ProductID = productID
		variants[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

// FindByID loads a product with its variants in stored order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByIDs loads active products keyed by ID, variants included.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// List pages through active products newest first. Price bounds are not
// applied here: they match the promoted price, which only the service knows.
func (r *Repository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR slug LIKE ?)", like, like, "%"+Slugify(q)+"%")
	}
	if brand := strings.TrimSpace(filters.Brand); brand != "" {
		qb = qb.Where("LOWER(brand) = ?", strings.ToLower(brand))
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		qb = qb.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if cursor != nil {
		qb = qb.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	err := qb.Preload("Variants", preloadVariants).
		Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}

// Search returns up to limit active products whose name, brand or category
// contains the query, best sellers first.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("is_active = ?", true).
		Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(category) LIKE ?)", like, like, like).
		Order("sold DESC").Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// SlugExists reports whether another product already owns slug.
func (r *Repository) SlugExists(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var count int64
	qb := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if except != uuid.Nil {
		qb = qb.Where("id <> ?", except)
	}
	if err := qb.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Deactivate hides a product from the catalog. Order history keeps pointing at it.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false})
	return res.RowsAffected > 0, res.Error
}

// DecrementStock takes qty units from the product when enough remain and bumps
// sold. It reports false when stock was insufficient.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock": gorm.Expr("stock - ?", qty),
			"sold":  gorm.Expr("sold + ?", qty),
		})
	return res.RowsAffected > 0, res.Error
}

// DecrementVariantStock takes qty units from one variant when enough remain.
func (r *Repository) DecrementVariantStock(ctx context.Context, productID uuid.UUID, color, capacity string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND color = ? AND capacity = ? AND stock >= ?", productID, color, capacity, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected > 0, res.Error
}

// Restock returns qty units to the product and reverses sold.
func (r *Repository) Restock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock": gorm.Expr("stock + ?", qty),
			"sold":  gorm.Expr("CASE WHEN sold >= ? THEN sold - ? ELSE 0 END", qty, qty),
		}).Error
}

// RestockVariant returns qty units to one variant. Missing variants are ignored.
func (r *Repository) RestockVariant(ctx context.Context, productID uuid.UUID, color, capacity string, qty int) error {
	return r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND color = ? AND capacity = ?", productID, color, capacity).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// StockOf returns the remaining product-level stock.
func (r *Repository) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("stock").
		Where("id = ?", productID).
		Scan(&stock).Error
	return stock, err
}

// SetStock overwrites product-level stock.
func (r *Repository) SetStock(ctx context.Context, productID uuid.UUID, stock int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", stock)
	return res.RowsAffected > 0, res.Error
}

// SetVariantStock overwrites stock for one variant.
func (r *Repository) SetVariantStock(ctx context.Context, productID uuid.UUID, color, capacity string, stock int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND color = ? AND capacity = ?", productID, color, capacity).
		Update("stock", stock)
	return res.RowsAffected > 0, res.Error
}
