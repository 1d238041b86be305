package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	dbtypes "github.com/techzonevn/storefront-backend/pkg/db/types"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/outbox/payloads"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

// Service manages admin promotions.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[PromotionDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error)
	Create(ctx context.Context, actor uuid.UUID, req CreatePromotionRequest) (*PromotionDTO, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, req UpdatePromotionRequest) (*PromotionDTO, error)
	Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db     txRunner
	repo   *Repository
	events outbox.Emitter
}

// NewService wires the promotions service.
func NewService(dbClient txRunner, repo *Repository, events outbox.Emitter) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("promotion repository is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{db: dbClient, repo: repo, events: events}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[PromotionDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filters, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list promotions")
	}
	page := pagination.Trim(rows, params.Limit, func(p models.Promotion) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	out := &pagination.Page[PromotionDTO]{Items: make([]PromotionDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, row := range page.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	dto := FromModel(*promo)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, actor uuid.UUID, req CreatePromotionRequest) (*PromotionDTO, error) {
	promo := &models.Promotion{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Scope:           req.Scope,
		DiscountPercent: req.DiscountPercent,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		ProductIDs:      dbtypes.UUIDArray(dedupeIDs(req.ProductIDs)),
		CustomerTiers:   tierStrings(req.CustomerTiers),
		IsActive:        true,
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	if err := validatePromotion(promo); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, promo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert promotion")
		}
		return s.emit(ctx, tx, actor, promo, payloads.PromotionActionCreated)
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*promo)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, req UpdatePromotionRequest) (*PromotionDTO, error) {
	var updated *models.Promotion
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		promo, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		applyUpdate(promo, req)
		if err := validatePromotion(promo); err != nil {
			return err
		}
		if err := repo.Save(ctx, promo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update promotion")
		}
		updated = promo
		return s.emit(ctx, tx, actor, promo, payloads.PromotionActionUpdated)
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		promo, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete promotion")
		}
		promo.IsActive = false
		return s.emit(ctx, tx, actor, promo, payloads.PromotionActionDeleted)
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, actor uuid.UUID, promo *models.Promotion, action string) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventPromotionChanged,
		AggregateType: enums.AggregatePromotion,
		AggregateID:   promo.ID,
		Data: payloads.PromotionChangedEvent{
			PromotionID:     promo.ID,
			Action:          action,
			Scope:           promo.Scope,
			DiscountPercent: promo.DiscountPercent,
			IsActive:        promo.IsActive,
		},
	}
	if actor != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: actor, Role: string(enums.UserRoleAdmin)}
	}
	if err := s.events.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit promotion_changed")
	}
	return nil
}

func applyUpdate(promo *models.Promotion, req UpdatePromotionRequest) {
	if req.Name != nil {
		promo.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		promo.Description = req.Description
	}
	if req.Scope != nil {
		promo.Scope = *req.Scope
	}
	if req.DiscountPercent != nil {
		promo.DiscountPercent = *req.DiscountPercent
	}
	if req.ClearWindow {
		promo.StartAt = nil
		promo.EndAt = nil
	}
	if req.StartAt != nil {
		promo.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		promo.EndAt = req.EndAt
	}
	if req.ProductIDs != nil {
		promo.ProductIDs = dbtypes.UUIDArray(dedupeIDs(*req.ProductIDs))
	}
	if req.CustomerTiers != nil {
		promo.CustomerTiers = tierStrings(*req.CustomerTiers)
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
}

func validatePromotion(p *models.Promotion) error {
	if p.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !p.Scope.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid scope %q", p.Scope)
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	if p.StartAt != nil && p.EndAt != nil && p.EndAt.Before(*p.StartAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_at must not be before start_at")
	}
	switch p.Scope {
	case enums.PromotionScopeProduct:
		if len(p.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product scope requires product_ids")
		}
	case enums.PromotionScopeCustomerTier:
		if len(p.CustomerTiers) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "customer_tier scope requires customer_tiers")
		}
		for _, raw := range p.CustomerTiers {
			if _, err := enums.ParseCustomerTier(raw); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer tier")
			}
		}
	}
	return nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load promotion")
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func tierStrings(tiers []enums.CustomerTier) pq.StringArray {
	out := make(pq.StringArray, 0, len(tiers))
	seen := map[enums.CustomerTier]struct{}{}
	for _, t := range tiers {
		normalized := enums.CustomerTier(strings.ToLower(strings.TrimSpace(string(t))))
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, string(normalized))
	}
	return out
}
