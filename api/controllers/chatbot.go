package controllers

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/api/responses"
	"github.com/techzonevn/storefront-backend/api/validators"
	"github.com/techzonevn/storefront-backend/internal/chatbot"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// ChatbotProducts answers the assistant's product lookup tool.
func ChatbotProducts(svc chatbot.Service, enabled bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "chatbot lookup disabled"))
			return
		}
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable"))
			return
		}

		query := validators.SanitizeString(r.URL.Query().Get("q"), 120)
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "q is required"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Lookup(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
