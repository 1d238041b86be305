package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/api/validators"
	"github.com/techzonevn/storefront-backend/internal/promotions"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

func AdminListPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*pagination.Page[promotions.PromotionDTO], error) {
		if svc == nil {
			return nil, Unavailable("promotion")
		}
		params, err := PageParams(r)
		if err != nil {
			return nil, err
		}
		filters, err := promotionFilters(r)
		if err != nil {
			return nil, err
		}
		return svc.List(r.Context(), filters, params)
	})
}

func promotionFilters(r *http.Request) (promotions.ListFilters, error) {
	var filters promotions.ListFilters
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("scope")); raw != "" {
		scope, err := enums.ParsePromotionScope(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope")
		}
		filters.Scope = &scope
	}
	if raw := strings.TrimSpace(q.Get("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid is_active")
		}
		filters.IsActive = &active
	}
	return filters, nil
}

// promotionTarget returns the acting admin and, when the route has one, the promotion id.
func promotionTarget(r *http.Request, withID bool) (actor, id uuid.UUID, err error) {
	if actor, err = RequireUser(r); err != nil || !withID {
		return actor, uuid.Nil, err
	}
	id, err = validators.ParseUUIDParam(r, "promotionId")
	return actor, id, err
}

// Promotion writes are audited with the acting admin and invalidate every
// loader's snapshot through promotion_changed.

func AdminCreatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusCreated, func(r *http.Request) (*promotions.PromotionDTO, error) {
		if svc == nil {
			return nil, Unavailable("promotion")
		}
		actor, _, err := promotionTarget(r, false)
		if err != nil {
			return nil, err
		}
		body, err := Decode[promotions.CreatePromotionRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), actor, body)
	})
}

func AdminUpdatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*promotions.PromotionDTO, error) {
		if svc == nil {
			return nil, Unavailable("promotion")
		}
		actor, id, err := promotionTarget(r, true)
		if err != nil {
			return nil, err
		}
		body, err := Decode[promotions.UpdatePromotionRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), actor, id, body)
	})
}

func AdminDeletePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusNoContent, func(r *http.Request) (NoContent, error) {
		if svc == nil {
			return NoContent{}, Unavailable("promotion")
		}
		actor, id, err := promotionTarget(r, true)
		if err != nil {
			return NoContent{}, err
		}
		return NoContent{}, svc.Delete(r.Context(), actor, id)
	})
}
