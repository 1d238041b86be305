package controllers

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/internal/banners"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// BannerList serves the banners live right now, in display order.
func BannerList(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) ([]banners.BannerDTO, error) {
		if svc == nil {
			return nil, Unavailable("banner")
		}
		return svc.Active(r.Context())
	})
}
