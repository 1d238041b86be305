package controllers

import (
	"context"
	"net/http"

	"github.com/techzonevn/storefront-backend/api/middleware"
	"github.com/techzonevn/storefront-backend/api/responses"
	"github.com/techzonevn/storefront-backend/internal/auth"
	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/config"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// tokenHeader mirrors the access token for clients that cannot read bodies
// before redirecting.
const tokenHeader = "X-Storefront-Token"

// issueTokens decodes Req, runs issue and answers with the fresh token pair.
func issueTokens[Req any](svc auth.Service, logg *logger.Logger, status int, issue func(auth.Service, context.Context, Req) (*auth.TokenResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens, err := func() (*auth.TokenResponse, error) {
			if svc == nil {
				return nil, Unavailable("auth")
			}
			body, err := Decode[Req](r)
			if err != nil {
				return nil, err
			}
			return issue(svc, r.Context(), body)
		}()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(tokenHeader, tokens.AccessToken)
		responses.WriteSuccessStatus(w, status, tokens)
	}
}

// AuthRegister creates a customer account and signs it in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return issueTokens(svc, logg, http.StatusCreated, auth.Service.Register)
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return issueTokens(svc, logg, http.StatusOK, auth.Service.Login)
}

// AuthRefresh trades a refresh token for a new pair; the old pair stops working.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return issueTokens(svc, logg, http.StatusOK, auth.Service.Refresh)
}

// AuthLogout revokes the session bound to the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusNoContent, func(r *http.Request) (NoContent, error) {
		if svc == nil {
			return NoContent{}, Unavailable("auth")
		}
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			return NoContent{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")
		}
		return NoContent{}, svc.Logout(r.Context(), accessID)
	})
}

// AdminAuthRegister bootstraps an admin account outside production when the
// feature flag allows it.
func AdminAuthRegister(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusCreated, func(r *http.Request) (*users.UserDTO, error) {
		if cfg.App.IsProd() || !cfg.FeatureFlags.AllowAdminSignup {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin register disabled")
		}
		if svc == nil {
			return nil, Unavailable("auth")
		}
		body, err := Decode[auth.RegisterRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.RegisterAdmin(r.Context(), body)
	})
}
