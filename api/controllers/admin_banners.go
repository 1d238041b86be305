package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/api/validators"
	"github.com/techzonevn/storefront-backend/internal/banners"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

func bannerID(r *http.Request) (uuid.UUID, error) { return validators.ParseUUIDParam(r, "bannerId") }

// AdminListBanners includes inactive and scheduled banners, unlike BannerList.
func AdminListBanners(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) ([]banners.BannerDTO, error) {
		if svc == nil {
			return nil, Unavailable("banner")
		}
		return svc.List(r.Context())
	})
}

func AdminCreateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusCreated, func(r *http.Request) (*banners.BannerDTO, error) {
		if svc == nil {
			return nil, Unavailable("banner")
		}
		body, err := Decode[banners.CreateBannerRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), body)
	})
}

func AdminUpdateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*banners.BannerDTO, error) {
		if svc == nil {
			return nil, Unavailable("banner")
		}
		id, err := bannerID(r)
		if err != nil {
			return nil, err
		}
		body, err := Decode[banners.UpdateBannerRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, body)
	})
}

func AdminDeleteBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusNoContent, func(r *http.Request) (NoContent, error) {
		if svc == nil {
			return NoContent{}, Unavailable("banner")
		}
		id, err := bannerID(r)
		if err != nil {
			return NoContent{}, err
		}
		return NoContent{}, svc.Delete(r.Context(), id)
	})
}
