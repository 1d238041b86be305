// Command worker consumes catalog events and invalidates the caches that hold
// priced product data.
package main

import (
	"context"
	"errors"
	"strings"

	"github.com/techzonevn/storefront-backend/internal/bootstrap"
	"github.com/techzonevn/storefront-backend/internal/consumers/catalog"
	"github.com/techzonevn/storefront-backend/pkg/pubsub"
	"github.com/techzonevn/storefront-backend/pkg/redis"
)

func main() {
	p := bootstrap.Start("worker")
	defer p.Stop()
	cfg, logg := p.Cfg, p.Log

	sub := strings.TrimSpace(cfg.PubSub.CatalogSubscription)
	if sub == "" {
		p.Must("read subscription", errors.New("STOREFRONT_PUBSUB_CATALOG_SUBSCRIPTION is empty"))
	}
	ctx := logg.WithField(p.Ctx, "subscription", sub)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	p.Must("connect redis", err)
	defer p.Close("redis", redisClient)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	p.Must("connect pubsub", err)
	defer p.Close("pubsub", pubsubClient)

	consumer, err := catalog.NewConsumer(pubsubClient.Subscriber(sub), redisClient, redisClient, logg)
	p.Must("catalog consumer", err)

	svc, err := NewService(ServiceParams{
		Logger:   logg,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	p.Must("worker service", err)

	logg.Info(ctx, "worker started")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.Must("run", err)
	}
	logg.Info(ctx, "worker stopped")
}
