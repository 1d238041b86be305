package controllers

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/api/responses"
	"github.com/techzonevn/storefront-backend/api/validators"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// Handle turns a request-to-result function into a handler. A 204 status
// drops the result; any other status wraps it in the success envelope.
func Handle[T any](logg *logger.Logger, status int, call func(*http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := call(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

func Decode[T any](r *http.Request) (T, error) {
	var body T
	err := validators.DecodeJSONBody(r, &body)
	return body, err
}

func Unavailable(service string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, service+" service unavailable")
}

// NoContent is the result type of endpoints that answer 204.
type NoContent = struct{}
