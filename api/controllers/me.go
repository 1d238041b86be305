package controllers

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// Me returns the caller's profile with tier and lifetime spend.
func Me(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*users.ProfileDTO, error) {
		if svc == nil {
			return nil, Unavailable("user")
		}
		userID, err := RequireUser(r)
		if err != nil {
			return nil, err
		}
		return svc.Profile(r.Context(), userID)
	})
}
