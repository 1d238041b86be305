package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/techzonevn/storefront-backend/internal/orders"
	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/internal/users"
	pkgAuth "github.com/techzonevn/storefront-backend/pkg/auth"
	"github.com/techzonevn/storefront-backend/pkg/auth/session"
	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubIdempotencyStore struct{ data map[string]string }

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key], _ = value.(string)
	return true, nil
}

func (s *stubIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.data[key], _ = value.(string)
	return nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

type stubProducts struct {
	lastTier *enums.CustomerTier
	lastSel  pricing.Selection
	listed   int
}

func (s *stubProducts) List(ctx context.Context, tier *enums.CustomerTier, filters products.ListFilters, params pagination.Params) (*pagination.Page[products.ProductSummary], error) {
	s.listed++
	s.lastTier = tier
	return &pagination.Page[products.ProductSummary]{Items: []products.ProductSummary{}}, nil
}

func (s *stubProducts) Detail(ctx context.Context, tier *enums.CustomerTier, id uuid.UUID, sel pricing.Selection) (*products.ProductDetail, error) {
	s.lastTier = tier
	s.lastSel = sel
	return &products.ProductDetail{}, nil
}

func (s *stubProducts) Create(context.Context, products.CreateProductRequest) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

func (s *stubProducts) Update(context.Context, uuid.UUID, products.UpdateProductRequest) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

func (s *stubProducts) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubProducts) SetStock(context.Context, uuid.UUID, products.SetStockRequest) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

type stubUsers struct{ tier enums.CustomerTier }

func (s stubUsers) Profile(ctx context.Context, userID uuid.UUID) (*users.ProfileDTO, error) {
	return &users.ProfileDTO{Tier: s.tier}, nil
}

func (s stubUsers) TierOf(ctx context.Context, userID uuid.UUID) (enums.CustomerTier, error) {
	return s.tier, nil
}

type stubOrders struct{ created int }

func (s *stubOrders) Create(ctx context.Context, userID uuid.UUID, req orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	s.created++
	return &orders.OrderDTO{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubOrders) ListForUser(context.Context, uuid.UUID, *enums.OrderStatus, pagination.Params) (*pagination.Page[orders.OrderDTO], error) {
	return &pagination.Page[orders.OrderDTO]{Items: []orders.OrderDTO{}}, nil
}

func (s *stubOrders) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (s *stubOrders) CancelForUser(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (s *stubOrders) List(context.Context, orders.ListFilters, pagination.Params) (*pagination.Page[orders.OrderDTO], error) {
	return &pagination.Page[orders.OrderDTO]{Items: []orders.OrderDTO{}}, nil
}

func (s *stubOrders) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, enums.OrderStatus) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

type harness struct {
	handler  http.Handler
	cfg      *config.Config
	products *stubProducts
	orders   *stubOrders
}

func newHarness(t *testing.T, mutate func(*Dependencies)) harness {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "storefront", ExpirationMinutes: 30},
		FeatureFlags: config.FeatureFlagsConfig{
			ChatbotLookup: false,
		},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	reg := prometheus.NewRegistry()

	h := harness{cfg: cfg, products: &stubProducts{}, orders: &stubOrders{}}
	deps := Dependencies{
		DB:          stubPinger{},
		Redis:       stubPinger{},
		Idempotency: &stubIdempotencyStore{data: map[string]string{}},
		Sessions:    stubSessions{},
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Users:       stubUsers{tier: enums.CustomerTierGold},
		Products:    h.products,
		Orders:      h.orders,
	}
	if mutate != nil {
		mutate(&deps)
	}
	h.handler = NewRouter(cfg, logg, deps)
	return h
}

func (h harness) token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	if rec := h.do(httptest.NewRequest(http.MethodGet, "/health/live", nil)); rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	if rec := h.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil)); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", rec.Code)
	}

	down := newHarness(t, func(d *Dependencies) { d.Redis = stubPinger{err: errors.New("connection refused")} })
	if rec := down.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with redis down: expected 503 got %d", rec.Code)
	}
}

func TestProductsAnonymousHaveNoTier(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=Apple&min_price=1000", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if h.products.listed != 1 || h.products.lastTier != nil {
		t.Fatalf("expected one anonymous list call, got listed=%d tier=%v", h.products.listed, h.products.lastTier)
	}
}

func TestProductsSignedInUseTier(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString()+"?color=Black&capacity=128GB", nil)
	req.Header.Set("Authorization", "Bearer "+h.token(t, enums.UserRoleCustomer))
	rec := h.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if h.products.lastTier == nil || *h.products.lastTier != enums.CustomerTierGold {
		t.Fatalf("expected gold tier, got %v", h.products.lastTier)
	}
	if h.products.lastSel.Color != "Black" || h.products.lastSel.Capacity != "128GB" {
		t.Fatalf("selection not forwarded: %+v", h.products.lastSel)
	}
}

func TestProductsRejectInvertedPriceRange(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=500&max_price=100", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t, nil)

	if rec := h.do(httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+h.token(t, enums.UserRoleCustomer))
	if rec := h.do(req); rec.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+h.token(t, enums.UserRoleAdmin))
	if rec := h.do(req); rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", rec.Code)
	}
}

func TestCreateOrderRequiresIdempotencyKey(t *testing.T) {
	h := newHarness(t, nil)
	token := h.token(t, enums.UserRoleCustomer)
	body := `{"items":[{"product_id":"` + uuid.NewString() + `","qty":1}],"payment_method":"cod","recipient_name":"Nguyen Van A","phone":"0912345678","shipping_address":"1 Le Loi, Q1, TP.HCM"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := h.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing key: expected 400 got %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "order-1")
		if rec := h.do(req); rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if h.orders.created != 1 {
		t.Fatalf("expected replay to skip the handler, got %d creates", h.orders.created)
	}
}

func TestChatbotLookupHonoursFeatureFlag(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/chatbot/products?q=iphone", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", rec.Code)
	}
}

func TestMetricsEndpointExposesHTTPCounters(t *testing.T) {
	h := newHarness(t, nil)
	h.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storefront_http_requests_total") {
		t.Fatalf("expected http counter in exposition")
	}
}
