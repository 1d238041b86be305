package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/api/middleware"
	"github.com/techzonevn/storefront-backend/api/responses"
	"github.com/techzonevn/storefront-backend/api/validators"
	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// TierResolver looks up the loyalty tier of a signed-in customer.
type TierResolver interface {
	TierOf(ctx context.Context, userID uuid.UUID) (enums.CustomerTier, error)
}

// requestTier returns nil for anonymous callers so tier-gated promotions are skipped.
func requestTier(r *http.Request, tiers TierResolver) (*enums.CustomerTier, error) {
	userID, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok || tiers == nil {
		return nil, nil
	}
	tier, err := tiers.TierOf(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// ProductList serves the storefront catalog with per-product pricing.
func ProductList(svc products.Service, tiers TierResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := PageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tier, err := requestTier(r, tiers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), tier, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func productFilters(r *http.Request) (products.ListFilters, error) {
	q := r.URL.Query()
	filters := products.ListFilters{
		Query:    validators.SanitizeString(q.Get("q"), 120),
		Brand:    validators.SanitizeString(q.Get("brand"), 60),
		Category: validators.SanitizeString(q.Get("category"), 60),
	}

	var err error
	if filters.MinPrice, err = validators.ParseQueryAmount(r, "min_price"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = validators.ParseQueryAmount(r, "max_price"); err != nil {
		return filters, err
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	return filters, nil
}

// ProductDetail returns one product priced for the optional color/capacity selection.
func ProductDetail(svc products.Service, tiers TierResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tier, err := requestTier(r, tiers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sel := pricing.Selection{
			Color:    strings.TrimSpace(r.URL.Query().Get("color")),
			Capacity: strings.TrimSpace(r.URL.Query().Get("capacity")),
		}
		detail, err := svc.Detail(r.Context(), tier, productID, sel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
