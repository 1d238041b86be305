package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/outbox/payloads"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads priced through the promotion pipeline and the
// admin write operations.
type Service interface {
	List(ctx context.Context, tier *enums.CustomerTier, filters ListFilters, params pagination.Params) (*pagination.Page[ProductSummary], error)
	Detail(ctx context.Context, tier *enums.CustomerTier, id uuid.UUID, sel pricing.Selection) (*ProductDetail, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDetail, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, req SetStockRequest) (*ProductDetail, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type snapshotLoader interface {
	Load(ctx context.Context) (*pricing.Snapshot, error)
}

type service struct {
	db     txRunner
	repo   *Repository
	loader snapshotLoader
	events outbox.Emitter
}

// NewService wires the catalog service.
func NewService(dbClient txRunner, repo *Repository, loader snapshotLoader, events outbox.Emitter) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("promotion loader is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{db: dbClient, repo: repo, loader: loader, events: events}, nil
}

func (s *service) List(ctx context.Context, tier *enums.CustomerTier, filters ListFilters, params pagination.Params) (*pagination.Page[ProductSummary], error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var matched []pricedRow
	for {
		rows, err := s.repo.List(ctx, filters, cursor, limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
		}
		for _, row := range rows {
			quote := snapshot.Quote(pricing.ProductFromModel(row), pricing.Selection{}, tier)
			if filters.PriceMatches(quote.FinalPrice) {
				matched = append(matched, pricedRow{row: row, summary: summaryFromModel(row, quote)})
			}
		}
		// Stop once a row beyond the page matched or the catalog ran out.
		if len(matched) > limit || len(rows) <= limit {
			break
		}
		last := rows[len(rows)-1]
		cursor = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	page := pagination.Trim(matched, limit, func(p pricedRow) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.row.CreatedAt, ID: p.row.ID}
	})
	out := &pagination.Page[ProductSummary]{Items: make([]ProductSummary, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, p := range page.Items {
		out.Items = append(out.Items, p.summary)
	}
	return out, nil
}

type pricedRow struct {
	row     models.Product
	summary ProductSummary
}

func (s *service) Detail(ctx context.Context, tier *enums.CustomerTier, id uuid.UUID, sel pricing.Selection) (*ProductDetail, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return buildDetail(product, snapshot, tier, sel), nil
}

// buildDetail prices a product for the detail page. A nil snapshot prices
// without promotions, as admin responses do.
func buildDetail(p *models.Product, snapshot *pricing.Snapshot, tier *enums.CustomerTier, sel pricing.Selection) *ProductDetail {
	priced := pricing.ProductFromModel(*p)
	quote := snapshot.Quote(priced, sel, tier)

	detail := &ProductDetail{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		Price:           p.Price,
		OldPrice:        p.OldPrice,
		DiscountPercent: p.DiscountPercent,
		Stock:           p.Stock,
		Sold:            p.Sold,
		Colors:          append([]string{}, p.Colors...),
		Capacities:      append([]string{}, p.Capacities...),
		Images:          append([]string{}, p.Images...),
		IsActive:        p.IsActive,
		Variants:        make([]VariantDTO, 0, len(p.Variants)),
		Pricing:         priceFromQuote(quote),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for _, v := range p.Variants {
		detail.Variants = append(detail.Variants, variantDTO(v))
	}
	if quote.Variant != nil {
		for _, v := range p.Variants {
			if v.Color == quote.Variant.Color && v.Capacity == quote.Variant.Capacity {
				selected := variantDTO(v)
				detail.SelectedVariant = &selected
				break
			}
		}
	}
	table := snapshot.VariantTable(priced, tier)
	detail.VariantPrices = make([]VariantPriceDTO, 0, len(table))
	for _, row := range table {
		detail.VariantPrices = append(detail.VariantPrices, VariantPriceDTO{
			Color:    row.Color,
			Capacity: row.Capacity,
			Stock:    row.Stock,
			Pricing:  priceFromQuote(row.Quote),
		})
	}
	return detail
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDetail, error) {
	product := &models.Product{
		Name:            strings.TrimSpace(req.Name),
		Brand:           strings.TrimSpace(req.Brand),
		Category:        strings.TrimSpace(req.Category),
		Description:     req.Description,
		Price:           req.Price,
		OldPrice:        req.OldPrice,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
		Colors:          cleanStrings(req.Colors),
		Capacities:      cleanStrings(req.Capacities),
		Images:          cleanStrings(req.Images),
		IsActive:        true,
		Variants:        variantModels(req.Variants),
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.Slug = Slugify(req.Slug)
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.FinalPrice = pricing.ProductFinalPrice(product.Price, product.DiscountPercent)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureSlugFree(ctx, repo, product.Slug, uuid.Nil); err != nil {
			return err
		}
		if err := repo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildDetail(product, nil, nil, pricing.Selection{}), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDetail, error) {
	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		applyUpdate(product, req)
		if req.Variants != nil {
			product.Variants = variantModels(*req.Variants)
		}
		if err := validateProduct(product); err != nil {
			return err
		}
		if err := s.ensureSlugFree(ctx, repo, product.Slug, product.ID); err != nil {
			return err
		}
		product.FinalPrice = pricing.ProductFinalPrice(product.Price, product.DiscountPercent)
		if err := repo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if req.Variants != nil {
			if err := repo.ReplaceVariants(ctx, product.ID, product.Variants); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace variants")
			}
		}
		updated, err = repo.FindByID(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildDetail(updated, nil, nil, pricing.Selection{}), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, req SetStockRequest) (*ProductDetail, error) {
	if req.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}

		if req.Color != nil || req.Capacity != nil {
			color, capacity := optionValue(req.Color), optionValue(req.Capacity)
			ok, err := repo.SetVariantStock(ctx, id, color, capacity, req.Stock)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set variant stock")
			}
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "variant %q/%q not found", color, capacity)
			}
		} else {
			if _, err := repo.SetStock(ctx, id, req.Stock); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set stock")
			}
			if req.Stock == 0 && product.Stock > 0 {
				if err := EmitStockDepleted(ctx, s.events, tx, product); err != nil {
					return err
				}
			}
		}

		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildDetail(updated, nil, nil, pricing.Selection{}), nil
}

// EmitStockDepleted writes a stock_depleted outbox row inside tx.
func EmitStockDepleted(ctx context.Context, events outbox.Emitter, tx *gorm.DB, p *models.Product) error {
	err := events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockDepleted,
		AggregateType: enums.AggregateProduct,
		AggregateID:   p.ID,
		Data: payloads.StockDepletedEvent{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit stock_depleted")
	}
	return nil
}

func (s *service) ensureSlugFree(ctx context.Context, repo *Repository, slug string, except uuid.UUID) error {
	taken, err := repo.SlugExists(ctx, slug, except)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
	}
	if taken {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "slug %q already in use", slug)
	}
	return nil
}

func applyUpdate(p *models.Product, req UpdateProductRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		p.Slug = Slugify(*req.Slug)
	}
	if req.Brand != nil {
		p.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.OldPrice != nil {
		p.OldPrice = req.OldPrice
	}
	if req.DiscountPercent != nil {
		p.DiscountPercent = *req.DiscountPercent
	}
	if req.Colors != nil {
		p.Colors = cleanStrings(*req.Colors)
	}
	if req.Capacities != nil {
		p.Capacities = cleanStrings(*req.Capacities)
	}
	if req.Images != nil {
		p.Images = cleanStrings(*req.Images)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case p.Slug == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "slug could not be derived from name")
	case p.Brand == "" || p.Category == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "brand and category are required")
	case p.Price < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	case p.OldPrice != nil && *p.OldPrice < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "old_price must not be negative")
	case p.DiscountPercent < 0 || p.DiscountPercent > 100:
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	case p.Stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	seen := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		if v.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price must not be negative")
		}
		if v.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant stock must not be negative")
		}
		key := strings.ToLower(v.Color) + "|" + strings.ToLower(v.Capacity)
		if _, dup := seen[key]; dup {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate variant %q/%q", v.Color, v.Capacity)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func variantModels(in []VariantInput) []models.ProductVariant {
	out := make([]models.ProductVariant, 0, len(in))
	for i, v := range in {
		out = append(out, models.ProductVariant{
			Position: i,
			Color:    strings.TrimSpace(v.Color),
			Capacity: strings.TrimSpace(v.Capacity),
			Price:    v.Price,
			Stock:    v.Stock,
			Images:   cleanStrings(v.Images),
		})
	}
	return out
}

func cleanStrings(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optionValue(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
}
