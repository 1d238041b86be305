package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/techzonevn/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger   *logger.Logger
	Redis    pinger
	PubSub   pinger
	Consumer runner
}

// Service starts the catalog consumer after Redis and Pub/Sub both answer.
type Service struct {
	logg     *logger.Logger
	deps     map[string]pinger
	consumer runner
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.Redis == nil:
		return nil, errors.New("redis client is required")
	case p.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case p.Consumer == nil:
		return nil, errors.New("catalog consumer is required")
	}
	return &Service{
		logg:     p.Logger,
		deps:     map[string]pinger{"redis": p.Redis, "pubsub": p.PubSub},
		consumer: p.Consumer,
	}, nil
}

func (s *Service) ready(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for name, dep := range s.deps {
		g.Go(func() error {
			if err := dep.Ping(gctx); err != nil {
				return fmt.Errorf("%s not ready: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run returns ctx.Err() after a clean shutdown and the consumer's error
// otherwise.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		s.logg.Error(ctx, "worker.dependencies_unready", err)
		return err
	}
	s.logg.Info(ctx, "worker.ready")

	if err := s.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logg.Error(ctx, "worker.consumer_failed", err)
		return err
	}
	return ctx.Err()
}
