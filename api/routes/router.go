package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techzonevn/storefront-backend/api/controllers"
	analyticscontrollers "github.com/techzonevn/storefront-backend/api/controllers/analytics"
	ordercontrollers "github.com/techzonevn/storefront-backend/api/controllers/orders"
	"github.com/techzonevn/storefront-backend/api/middleware"
	"github.com/techzonevn/storefront-backend/internal/analytics"
	"github.com/techzonevn/storefront-backend/internal/auth"
	"github.com/techzonevn/storefront-backend/internal/banners"
	"github.com/techzonevn/storefront-backend/internal/chatbot"
	"github.com/techzonevn/storefront-backend/internal/orders"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/internal/promotions"
	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/auth/session"
	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
	pkgredis "github.com/techzonevn/storefront-backend/pkg/redis"
)

// Dependencies carries everything the HTTP layer needs. Nil stores disable the
// middleware that uses them.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimits  middleware.RateLimiterStore
	Idempotency pkgredis.IdempotencyStore
	Sessions    session.AccessSessionChecker
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth       auth.Service
	Users      users.Service
	Products   products.Service
	Promotions promotions.Service
	Banners    banners.Service
	Orders     orders.Service
	Analytics  analytics.Service
	Chatbot    chatbot.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimits, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimits, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimits, logg)).Post("/register", controllers.AdminAuthRegister(deps.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimits, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", controllers.ProductList(deps.Products, deps.Users, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, deps.Users, logg))
	})
	r.Get("/api/v1/banners", controllers.BannerList(deps.Banners, logg))
	r.Get("/api/v1/chatbot/products", controllers.ChatbotProducts(deps.Chatbot, cfg.FeatureFlags.ChatbotLookup, logg))

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/api/v1/me", controllers.Me(deps.Users, logg))
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.With(idempotent).Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.With(idempotent).Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))
			r.With(idempotent).Put("/{productId}/stock", controllers.AdminSetProductStock(deps.Products, logg))
		})
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.AdminListPromotions(deps.Promotions, logg))
			r.Post("/", controllers.AdminCreatePromotion(deps.Promotions, logg))
			r.Patch("/{promotionId}", controllers.AdminUpdatePromotion(deps.Promotions, logg))
			r.Delete("/{promotionId}", controllers.AdminDeletePromotion(deps.Promotions, logg))
		})
		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.AdminListBanners(deps.Banners, logg))
			r.Post("/", controllers.AdminCreateBanner(deps.Banners, logg))
			r.Patch("/{bannerId}", controllers.AdminUpdateBanner(deps.Banners, logg))
			r.Delete("/{bannerId}", controllers.AdminDeleteBanner(deps.Banners, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(deps.Orders, logg))
			r.With(idempotent).Post("/{orderId}/status", ordercontrollers.AdminUpdateStatus(deps.Orders, logg))
		})
		r.Get("/analytics/summary", analyticscontrollers.Summary(deps.Analytics, logg))
	})

	return r
}
