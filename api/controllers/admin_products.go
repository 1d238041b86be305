package controllers

import (
	"net/http"

	"github.com/techzonevn/storefront-backend/api/validators"
	"github.com/techzonevn/storefront-backend/internal/products"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// Admin product responses are priced without promotions or tiers.

func AdminCreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusCreated, func(r *http.Request) (*products.ProductDetail, error) {
		if svc == nil {
			return nil, Unavailable("product")
		}
		body, err := Decode[products.CreateProductRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), body)
	})
}

func AdminUpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*products.ProductDetail, error) {
		if svc == nil {
			return nil, Unavailable("product")
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		body, err := Decode[products.UpdateProductRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, body)
	})
}

// AdminDeleteProduct hides the product from the storefront. Order history keeps its rows.
func AdminDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusNoContent, func(r *http.Request) (NoContent, error) {
		if svc == nil {
			return NoContent{}, Unavailable("product")
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return NoContent{}, err
		}
		return NoContent{}, svc.Delete(r.Context(), id)
	})
}

// AdminSetProductStock overwrites stock; dropping it to zero publishes stock_depleted.
func AdminSetProductStock(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return Handle(logg, http.StatusOK, func(r *http.Request) (*products.ProductDetail, error) {
		if svc == nil {
			return nil, Unavailable("product")
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		body, err := Decode[products.SetStockRequest](r)
		if err != nil {
			return nil, err
		}
		return svc.SetStock(r.Context(), id, body)
	})
}
