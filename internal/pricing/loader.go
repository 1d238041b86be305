package pricing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/metrics"
)

// PromotionSource reads promotions that may be active at now. Implementations
// may pre-filter in storage; the loader filters and orders again regardless.
type PromotionSource interface {
	ActivePromotions(ctx context.Context, now time.Time) ([]Promotion, error)
}

// Loader produces a per-request promotion snapshot.
type Loader struct {
	source  PromotionSource
	now     func() time.Time
	metrics *metrics.PricingMetrics
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithMetrics attaches pricing metrics.
func WithMetrics(m *metrics.PricingMetrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader builds a loader over the given source.
func NewLoader(source PromotionSource, opts ...LoaderOption) (*Loader, error) {
	if source == nil {
		return nil, fmt.Errorf("promotion source required")
	}
	l := &Loader{source: source, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load fetches the active promotions and returns them as an ordered snapshot.
// Storage failures surface as DEPENDENCY_ERROR so the whole request fails.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	now := l.now().UTC()
	started := time.Now()
	promos, err := l.source.ActivePromotions(ctx, now)
	l.metrics.ObserveLoad(time.Since(started), err)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "load active promotions")
	}
	return &Snapshot{
		promotions: FilterActive(promos, now),
		loadedAt:   now,
		metrics:    l.metrics,
	}, nil
}

// FilterActive keeps promotions active at now and returns them ordered by
// ComparePromotions. The input slice is not modified.
func FilterActive(promos []Promotion, now time.Time) []Promotion {
	out := make([]Promotion, 0, len(promos))
	for _, p := range promos {
		if p.ActiveAt(now) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, ComparePromotions)
	return out
}

// ComparePromotions ranks promotions best first: higher discount, then more
// recently created, then lower id. It is a total order, so sorting never
// depends on input order.
func ComparePromotions(a, b Promotion) int {
	if c := cmp.Compare(b.Percent(), a.Percent()); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}
