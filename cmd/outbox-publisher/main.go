// Command outbox-publisher drains outbox_events onto the Pub/Sub topics the
// event registry routes them to.
package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/techzonevn/storefront-backend/internal/bootstrap"
	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/instance"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
	"github.com/techzonevn/storefront-backend/pkg/migrate"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/outbox/registry"
	"github.com/techzonevn/storefront-backend/pkg/pubsub"
)

func main() {
	p := bootstrap.Start("outbox-publisher")
	defer p.Stop()
	cfg, logg, ctx := p.Cfg, p.Log, p.Ctx

	dbClient, err := db.New(ctx, cfg.DB, logg)
	p.Must("connect database", err)
	defer p.Close("database", dbClient)
	p.Must("dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	p.Must("connect pubsub", err)
	defer p.Close("pubsub", pubsubClient)

	routes, err := registry.NewEventRegistry(cfg.PubSub)
	p.Must("event registry", err)

	gormDB := dbClient.DB()
	svc, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outbox.NewRepository(gormDB),
		Registry:      routes,
		DLQRepository: outbox.NewDLQRepository(gormDB),
		Metrics:       metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
		InstanceID:    instance.GetID(),
	})
	p.Must("publisher service", err)

	p.ServeMetrics(cfg.Outbox.MetricsAddr)

	logg.Info(ctx, "outbox publisher started")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.Must("run", err)
	}
	logg.Info(ctx, "outbox publisher stopped")
}
