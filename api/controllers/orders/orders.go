package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/api/controllers"
	"github.com/techzonevn/storefront-backend/api/validators"
	internalorders "github.com/techzonevn/storefront-backend/internal/orders"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

type (
	order = *internalorders.OrderDTO
	page  = *pagination.Page[internalorders.OrderDTO]
)

// owned runs fn for the signed-in customer and the order named in the path.
func owned(svc internalorders.Service, fn func(r *http.Request, userID, orderID uuid.UUID) (order, error)) func(*http.Request) (order, error) {
	return func(r *http.Request) (order, error) {
		if svc == nil {
			return nil, controllers.Unavailable("order")
		}
		userID, err := controllers.RequireUser(r)
		if err != nil {
			return nil, err
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			return nil, err
		}
		return fn(r, userID, orderID)
	}
}

// Create places an order for the signed-in customer. Idempotency is enforced
// by middleware before this handler runs.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusCreated, func(r *http.Request) (order, error) {
		if svc == nil {
			return nil, controllers.Unavailable("order")
		}
		userID, err := controllers.RequireUser(r)
		if err != nil {
			return nil, err
		}
		body, err := controllers.Decode[internalorders.CreateOrderRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), userID, body)
	})
}

// List returns the caller's own orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusOK, func(r *http.Request) (page, error) {
		if svc == nil {
			return nil, controllers.Unavailable("order")
		}
		userID, err := controllers.RequireUser(r)
		if err != nil {
			return nil, err
		}
		params, filters, err := listQuery(r, false)
		if err != nil {
			return nil, err
		}
		return svc.ListForUser(r.Context(), userID, filters.Status, params)
	})
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusOK, owned(svc, func(r *http.Request, userID, orderID uuid.UUID) (order, error) {
		return svc.GetForUser(r.Context(), userID, orderID)
	}))
}

// Cancel lets a customer cancel their own pending order. Stock is restored.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusOK, owned(svc, func(r *http.Request, userID, orderID uuid.UUID) (order, error) {
		return svc.CancelForUser(r.Context(), userID, orderID)
	}))
}

// AdminList pages through every order, optionally by status or customer.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusOK, func(r *http.Request) (page, error) {
		if svc == nil {
			return nil, controllers.Unavailable("order")
		}
		params, filters, err := listQuery(r, true)
		if err != nil {
			return nil, err
		}
		return svc.List(r.Context(), filters, params)
	})
}

// AdminUpdateStatus applies one lifecycle transition. The signed-in admin is
// recorded as the actor.
func AdminUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return controllers.Handle(logg, http.StatusOK, owned(svc, func(r *http.Request, actor, orderID uuid.UUID) (order, error) {
		body, err := controllers.Decode[internalorders.UpdateStatusRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.UpdateStatus(r.Context(), actor, orderID, body.Status)
	}))
}

// listQuery reads paging plus the status filter; byUser also accepts user_id.
func listQuery(r *http.Request, byUser bool) (pagination.Params, internalorders.ListFilters, error) {
	var filters internalorders.ListFilters
	params, err := controllers.PageParams(r)
	if err != nil {
		return params, filters, err
	}

	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return params, filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("user_id")); byUser && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
		}
		filters.UserID = &id
	}
	return params, filters, nil
}
