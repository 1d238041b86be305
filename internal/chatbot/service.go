// Package chatbot serves the product lookup tool used by the support chat.
// Results are cached in Redis for a short TTL keyed by the normalized query and
// a generation counter that catalog events bump to drop stale prices.
package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/redis"
)

const (
	cacheScope    = "chatbot_products"
	generationKey = "gen"
)

// ProductHit is the compact row returned to the chat tool.
type ProductHit struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Brand      string `json:"brand"`
	FinalPrice int64  `json:"final_price"`
	Stock      int    `json:"stock"`
	InStock    bool   `json:"in_stock"`
}

// LookupResult wraps the hits with whether they came from cache.
type LookupResult struct {
	Query  string       `json:"query"`
	Items  []ProductHit `json:"items"`
	Cached bool         `json:"cached"`
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope string, parts ...string) string
}

// Invalidator bumps the cache generation.
type Invalidator interface {
	Incr(ctx context.Context, key string) (int64, error)
	CacheKey(scope string, parts ...string) string
}

// InvalidateCache makes every cached lookup unreachable. Old entries expire
// on their own TTL.
func InvalidateCache(ctx context.Context, store Invalidator) (int64, error) {
	return store.Incr(ctx, store.CacheKey(cacheScope, generationKey))
}

type productSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Product, error)
}

type snapshotLoader interface {
	Load(ctx context.Context) (*pricing.Snapshot, error)
}

type Service interface {
	Lookup(ctx context.Context, query string, limit int) (*LookupResult, error)
}

type service struct {
	products productSearcher
	loader   snapshotLoader
	cache    cache
	cfg      config.ChatbotConfig
	logg     *logger.Logger
}

func NewService(products productSearcher, loader snapshotLoader, cache cache, cfg config.ChatbotConfig, logg *logger.Logger) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product searcher is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("promotion loader is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &service{products: products, loader: loader, cache: cache, cfg: cfg, logg: logg}, nil
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Lookup prices matching products with the anonymous (no tier) promotion set.
func (s *service) Lookup(ctx context.Context, query string, limit int) (*LookupResult, error) {
	q := normalizeQuery(query)
	if q == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	key := s.cache.CacheKey(cacheScope, s.generation(ctx), q, strconv.Itoa(limit))
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var items []ProductHit
		if jsonErr := json.Unmarshal([]byte(raw), &items); jsonErr == nil {
			return &LookupResult{Query: q, Items: items, Cached: true}, nil
		}
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "chatbot cache read failed: "+err.Error())
	}

	rows, err := s.products.Search(ctx, q, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search products")
	}
	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ProductHit, 0, len(rows))
	for _, row := range rows {
		quote := snapshot.Quote(pricing.ProductFromModel(row), pricing.Selection{}, nil)
		items = append(items, ProductHit{
			Name:       row.Name,
			Slug:       row.Slug,
			Brand:      row.Brand,
			FinalPrice: quote.FinalPrice,
			Stock:      row.Stock,
			InStock:    row.Stock > 0,
		})
	}

	if s.cfg.CacheTTL > 0 {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cfg.CacheTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "chatbot cache write failed: "+err.Error())
			}
		}
	}
	return &LookupResult{Query: q, Items: items}, nil
}

func (s *service) generation(ctx context.Context) string {
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheScope, generationKey))
	if err != nil {
		return "0"
	}
	return raw
}
