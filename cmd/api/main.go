package main

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/techzonevn/storefront-backend/api/routes"
	"github.com/techzonevn/storefront-backend/internal/analytics"
	"github.com/techzonevn/storefront-backend/internal/auth"
	"github.com/techzonevn/storefront-backend/internal/banners"
	"github.com/techzonevn/storefront-backend/internal/bootstrap"
	"github.com/techzonevn/storefront-backend/internal/chatbot"
	"github.com/techzonevn/storefront-backend/internal/orders"
	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/internal/promotions"
	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/auth/session"
	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
	"github.com/techzonevn/storefront-backend/pkg/migrate"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/redis"
	"github.com/techzonevn/storefront-backend/pkg/vietqr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	p := bootstrap.Start("api")
	defer p.Stop()
	cfg, logg, ctx := p.Cfg, p.Log, p.Ctx

	dbClient, err := db.New(ctx, cfg.DB, logg)
	p.Must("connect database", err)
	defer p.Close("database", dbClient)
	p.Must("dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	p.Must("connect redis", err)
	defer p.Close("redis", redisClient)

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	p.Must("session manager", err)
	tiers, err := pricing.NewTierPolicy(cfg.Pricing)
	p.Must("tier thresholds", err)

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	promotionRepo := promotions.NewRepository(gormDB)
	events := outbox.NewService(outbox.NewRepository(gormDB), logg)

	// One loader instance backs every priced read so its cache is shared.
	loader, err := pricing.NewLoader(promotionRepo, pricing.WithMetrics(metrics.NewPricingMetrics(prometheus.DefaultRegisterer)))
	p.Must("promotion loader", err)

	deps := routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		RateLimits:  redisClient,
		Idempotency: redisClient,
		Sessions:    sessions,
		Gatherer:    prometheus.DefaultGatherer,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
	}

	deps.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	p.Must("auth service", err)

	userService, err := users.NewService(userRepo, tiers)
	p.Must("user service", err)
	deps.Users = userService

	deps.Products, err = products.NewService(dbClient, productRepo, loader, events)
	p.Must("product service", err)
	deps.Promotions, err = promotions.NewService(dbClient, promotionRepo, events)
	p.Must("promotion service", err)
	deps.Banners, err = banners.NewService(banners.NewRepository(gormDB), nil)
	p.Must("banner service", err)

	orderParams := orders.ServiceParams{
		DB:       dbClient,
		Repo:     orders.NewRepository(gormDB),
		Products: productRepo,
		Users:    userRepo,
		Tiers:    userService,
		Loader:   loader,
		Events:   events,
		Config:   cfg.Orders,
		Logger:   logg,
	}
	if qr := vietqr.New(cfg.VietQR); qr != nil {
		orderParams.Payments = qr
	} else {
		logg.Warn(ctx, "vietqr bank details missing, vietqr checkout disabled")
	}
	deps.Orders, err = orders.NewService(orderParams)
	p.Must("order service", err)

	deps.Analytics, err = analytics.NewService(analytics.NewRepository(gormDB), userRepo, nil)
	p.Must("analytics service", err)
	deps.Chatbot, err = chatbot.NewService(productRepo, loader, redisClient, cfg.Chatbot, logg)
	p.Must("chatbot service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = logg.WithField(ctx, "addr", server.Addr)
	logg.Info(ctx, "api listening")
	if err := p.Serve(server, shutdownTimeout); err != nil {
		p.Must("serve http", err)
	}
	logg.Info(ctx, "api stopped")
}
