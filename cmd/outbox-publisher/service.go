package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
	"github.com/techzonevn/storefront-backend/pkg/outbox/registry"
)

const (
	publishTimeout = 15 * time.Second
	maxBackoff     = 10 * time.Second
	jitterWindow   = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Metrics          *metrics.OutboxMetrics
	InstanceID       string
}

// Service drains unpublished outbox rows to Pub/Sub in batches, one
// transaction per batch so the row lock and the status update commit together.
type Service struct {
	logg       *logger.Logger
	db         dbClient
	pubsub     pubSubClient
	repo       outboxRepository
	registry   registryResolver
	dlq        dlqRepository
	topics     publisherFactory
	metrics    *metrics.OutboxMetrics
	instanceID string

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	required := []struct {
		name string
		ok   bool
	}{
		{"config", p.Config != nil},
		{"logger", p.Logger != nil},
		{"database client", p.DB != nil},
		{"pubsub client", p.PubSub != nil},
		{"outbox repository", p.Repository != nil},
		{"event registry", p.Registry != nil},
		{"dlq repository", p.DLQRepository != nil},
	}
	for _, r := range required {
		if !r.ok {
			return nil, fmt.Errorf("%s is required", r.name)
		}
	}

	topics := p.PublisherFactory
	if topics == nil {
		topics = pubsubPublishers(p.PubSub)
	}

	cfg := p.Config.Outbox
	return &Service{
		logg:         p.Logger,
		db:           p.DB,
		pubsub:       p.PubSub,
		repo:         p.Repository,
		registry:     p.Registry,
		dlq:          p.DLQRepository,
		topics:       topics,
		metrics:      p.Metrics,
		instanceID:   p.InstanceID,
		batchSize:    positiveOr(cfg.BatchSize, 50),
		maxAttempts:  positiveOr(cfg.MaxAttempts, 10),
		pollInterval: time.Duration(positiveOr(cfg.PollIntervalMS, 500)) * time.Millisecond,
	}, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Run polls until ctx ends. A full batch is followed immediately by another;
// an empty one waits one poll interval; a failed one backs off exponentially.
func (s *Service) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{"database": s.db.Ping, "pubsub": s.pubsub.Ping} {
		if err := ping(ctx); err != nil {
			s.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}

	delay := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher stopping")
			return err
		}

		n, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			delay = nextBackoff(delay, s.pollInterval, maxBackoff)
		case n > 0:
			delay = s.pollInterval
			continue
		default:
			delay = s.pollInterval
		}

		if err := sleepCtx(ctx, withJitter(delay)); err != nil {
			return err
		}
	}
}

// processBatch locks up to batchSize due rows and dispatches each one. It
// returns how many rows were handled.
func (s *Service) processBatch(ctx context.Context) (int, error) {
	var handled int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, event := range events {
			if err := s.dispatch(ctx, tx, event); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	return handled, err
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current < base {
		current = base
	}
	return min(current*2, limit)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var errNoPublisher = errors.New("no publisher for topic")
