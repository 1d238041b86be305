package analytics

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/api/responses"
	"github.com/techzonevn/storefront-backend/api/validators"
	internalanalytics "github.com/techzonevn/storefront-backend/internal/analytics"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// Summary serves the admin dashboard numbers for ?from=&to=.
func Summary(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
