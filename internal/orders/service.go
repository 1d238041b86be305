package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/outbox/payloads"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
	"github.com/techzonevn/storefront-backend/pkg/security"
)

const orderNumberAttempts = 5

// Service covers the customer checkout flow and admin order handling.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[OrderDTO], error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	CancelForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error)
	UpdateStatus(ctx context.Context, actor, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type snapshotLoader interface {
	Load(ctx context.Context) (*pricing.Snapshot, error)
}

type tierResolver interface {
	TierOf(ctx context.Context, userID uuid.UUID) (enums.CustomerTier, error)
}

type paymentLinker interface {
	PaymentURL(amount int64, orderNumber string) (string, error)
}

// ServiceParams groups the collaborators of the orders service. Payments may
// be nil when VietQR is not configured.
type ServiceParams struct {
	DB       txRunner
	Repo     Repository
	Products *products.Repository
	Users    *users.Repository
	Tiers    tierResolver
	Loader   snapshotLoader
	Events   outbox.Emitter
	Payments paymentLinker
	Config   config.OrdersConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	db       txRunner
	repo     Repository
	products *products.Repository
	users    *users.Repository
	tiers    tierResolver
	loader   snapshotLoader
	events   outbox.Emitter
	payments paymentLinker
	cfg      config.OrdersConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the orders service.
func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.DB == nil:
		return nil, fmt.Errorf("database client is required")
	case p.Repo == nil:
		return nil, fmt.Errorf("order repository is required")
	case p.Products == nil:
		return nil, fmt.Errorf("product repository is required")
	case p.Users == nil:
		return nil, fmt.Errorf("user repository is required")
	case p.Tiers == nil:
		return nil, fmt.Errorf("tier resolver is required")
	case p.Loader == nil:
		return nil, fmt.Errorf("promotion loader is required")
	case p.Events == nil:
		return nil, fmt.Errorf("outbox emitter is required")
	case p.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Config.NumberPrefix == "" {
		p.Config.NumberPrefix = "TZ"
	}
	return &service{
		db:       p.DB,
		repo:     p.Repo,
		products: p.Products,
		users:    p.Users,
		tiers:    p.Tiers,
		loader:   p.Loader,
		events:   p.Events,
		payments: p.Payments,
		cfg:      p.Config,
		logg:     p.Logger,
		now:      p.Now,
	}, nil
}

type lineKey struct {
	productID uuid.UUID
	color     string
	capacity  string
}

// mergeLines folds repeated (product, color, capacity) lines together,
// keeping first-seen order.
func mergeLines(items []CreateOrderItemRequest) []CreateOrderItemRequest {
	out := make([]CreateOrderItemRequest, 0, len(items))
	index := make(map[lineKey]int, len(items))
	for _, item := range items {
		key := lineKey{
			productID: item.ProductID,
			color:     strings.ToLower(strings.TrimSpace(item.Color)),
			capacity:  strings.ToLower(strings.TrimSpace(item.Capacity)),
		}
		if i, ok := index[key]; ok {
			out[i].Qty += item.Qty
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

func (s *service) validateCreate(req CreateOrderRequest) ([]CreateOrderItemRequest, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !req.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", req.PaymentMethod)
	}
	if req.PaymentMethod.Prepaid() && s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vietqr payment is not available")
	}
	if strings.TrimSpace(req.RecipientName) == "" || strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient name, phone and shipping address are required")
	}
	lines := mergeLines(req.Items)
	if s.cfg.MaxLineItems > 0 && len(lines) > s.cfg.MaxLineItems {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "an order may contain at most %d lines", s.cfg.MaxLineItems)
	}
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
		}
		if s.cfg.MaxLineQty > 0 && line.Qty > s.cfg.MaxLineQty {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "qty may not exceed %d per line", s.cfg.MaxLineQty)
		}
	}
	return lines, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	lines, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}
	tier, err := s.tiers.TierOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		CustomerTier:    tier,
		RecipientName:   strings.TrimSpace(req.RecipientName),
		Phone:           strings.TrimSpace(req.Phone),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Note:            req.Note,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		catalog, err := productRepo.FindActiveByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
		}

		depleted := map[uuid.UUID]*models.Product{}
		for _, line := range lines {
			product, ok := catalog[line.ProductID]
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s is not available", line.ProductID)
			}
			item, err := priceLine(snapshot, &product, line, tier)
			if err != nil {
				return err
			}
			if err := s.takeStock(ctx, productRepo, &product, item); err != nil {
				return err
			}
			stock, err := productRepo.StockOf(ctx, product.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read stock")
			}
			if stock == 0 {
				p := product
				depleted[p.ID] = &p
			}

			order.Items = append(order.Items, item)
			order.SubtotalAmount += item.OriginalPrice * int64(item.Qty)
			order.TotalAmount += item.LineTotal
		}
		order.DiscountAmount = order.SubtotalAmount - order.TotalAmount
		if order.DiscountAmount < 0 {
			order.DiscountAmount = 0
		}

		number, err := s.nextOrderNumber(ctx, orderRepo)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if err := s.emitCreated(ctx, tx, order); err != nil {
			return err
		}
		for _, product := range depleted {
			if err := products.EmitStockDepleted(ctx, s.events, tx, product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(*order)
	if order.PaymentMethod.Prepaid() {
		link, err := s.payments.PaymentURL(order.TotalAmount, order.OrderNumber)
		if err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "vietqr link unavailable: "+err.Error())
		} else {
			dto.PaymentURL = &link
		}
	}
	return &dto, nil
}

// priceLine runs the resolver and calculator for one cart line and freezes the
// result as an order item.
func priceLine(snapshot *pricing.Snapshot, product *models.Product, line CreateOrderItemRequest, tier enums.CustomerTier) (models.OrderItem, error) {
	priced := pricing.ProductFromModel(*product)
	quote := snapshot.Quote(priced, pricing.Selection{Color: line.Color, Capacity: line.Capacity}, &tier)
	if len(priced.Variants) > 0 && quote.Variant == nil {
		return models.OrderItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s has no option %q/%q", product.Name, line.Color, line.Capacity)
	}

	item := models.OrderItem{
		ProductID:       product.ID,
		Name:            product.Name,
		Qty:             line.Qty,
		BasePrice:       quote.BasePrice,
		OriginalPrice:   quote.OriginalPrice,
		UnitPrice:       quote.FinalPrice,
		DiscountPercent: quote.EffectiveDiscountPercent,
		LineTotal:       quote.FinalPrice * int64(line.Qty),
	}
	if quote.Variant != nil {
		item.Color = quote.Variant.Color
		item.Capacity = quote.Variant.Capacity
	}
	if quote.AppliedPromotion != nil {
		id := quote.AppliedPromotion.ID
		item.PromotionID = &id
	}
	return item, nil
}

func (s *service) takeStock(ctx context.Context, repo *products.Repository, product *models.Product, item models.OrderItem) error {
	ok, err := repo.DecrementStock(ctx, product.ID, item.Qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "not enough stock for %s", product.Name).
			WithDetails(map[string]any{"product_id": product.ID, "requested": item.Qty})
	}
	if len(product.Variants) == 0 {
		return nil
	}
	ok, err = repo.DecrementVariantStock(ctx, product.ID, item.Color, item.Capacity, item.Qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement variant stock")
	}
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "not enough stock for %s %s %s", product.Name, item.Color, item.Capacity).
			WithDetails(map[string]any{"product_id": product.ID, "color": item.Color, "capacity": item.Capacity, "requested": item.Qty})
	}
	return nil
}

func (s *service) nextOrderNumber(ctx context.Context, repo Repository) (string, error) {
	day := s.now().In(vietnamTime).Format("060102")
	for i := 0; i < orderNumberAttempts; i++ {
		digits, err := security.RandomDigits(6)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		candidate := s.cfg.NumberPrefix + day + digits
		taken, err := repo.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check order number")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate an order number")
}

var vietnamTime = time.FixedZone("ICT", 7*60*60)

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	return s.List(ctx, ListFilters{UserID: &userID, Status: status}, params)
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *filters.Status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filters, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	page := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := &pagination.Page[OrderDTO]{Items: make([]OrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, row := range page.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) CancelForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	return s.transition(ctx, orderID, enums.OrderStatusCancelled, func(order *models.Order) error {
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "only pending orders can be cancelled, order is %s", order.Status)
		}
		return nil
	}, &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)})
}

func (s *service) UpdateStatus(ctx context.Context, actor, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", next)
	}
	return s.transition(ctx, orderID, next, nil, &outbox.ActorRef{UserID: actor, Role: string(enums.UserRoleAdmin)})
}

// transition applies a legal status change with its side effects: cancelling
// restocks every line and completing credits the customer's lifetime spend.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus, check func(*models.Order) error, actor *outbox.ActorRef) (*OrderDTO, error) {
	var result *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return mapLookupError(err)
		}
		if check != nil {
			if err := check(order); err != nil {
				return err
			}
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, next).
				WithDetails(map[string]any{"from": order.Status, "to": next})
		}

		at := s.now().UTC()
		ok, err := repo.TransitionStatus(ctx, order.ID, order.Status, next, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		switch next {
		case enums.OrderStatusCancelled:
			if err := s.restock(ctx, tx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock order")
			}
		case enums.OrderStatusCompleted:
			if err := s.users.WithTx(tx).AddLifetimeSpend(ctx, order.UserID, order.TotalAmount); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order owner not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: add lifetime spend")
			}
		}

		if err := s.emitStatusChanged(ctx, tx, order, next, at, actor); err != nil {
			return err
		}
		result, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*result)
	return &dto, nil
}

func (s *service) restock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	repo := s.products.WithTx(tx)
	var errs error
	for _, item := range order.Items {
		errs = multierr.Append(errs, repo.Restock(ctx, item.ProductID, item.Qty))
		errs = multierr.Append(errs, repo.RestockVariant(ctx, item.ProductID, item.Color, item.Capacity, item.Qty))
	}
	return errs
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	lines := make([]payloads.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payloads.OrderLine{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Color:       item.Color,
			Capacity:    item.Capacity,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			PromotionID: item.PromotionID,
		})
	}
	err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: order.UserID, Role: string(enums.UserRoleCustomer)},
		Data: payloads.OrderCreatedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			UserID:        order.UserID,
			PaymentMethod: order.PaymentMethod,
			CustomerTier:  order.CustomerTier,
			Subtotal:      order.SubtotalAmount,
			Discount:      order.DiscountAmount,
			Total:         order.TotalAmount,
			Items:         lines,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order_created")
	}
	return nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, at time.Time, actor *outbox.ActorRef) error {
	err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			From:        order.Status,
			To:          next,
			Total:       order.TotalAmount,
			ChangedAt:   at,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order_status_changed")
	}
	return nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
}
