package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

type quantity struct {
	Qty int `json:"qty" validate:"required,min=1,max=20"`
}

func serve(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestHandle(t *testing.T) {
	echo := Handle(nil, http.StatusCreated, func(r *http.Request) (quantity, error) {
		return Decode[quantity](r)
	})

	rec := serve(echo, `{"qty":3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"qty":3}}`, rec.Body.String())

	rec = serve(echo, `{"qty":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeValidation))

	gone := Handle(nil, http.StatusNoContent, func(*http.Request) (NoContent, error) { return NoContent{}, nil })
	rec = serve(gone, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	down := Handle(nil, http.StatusOK, func(*http.Request) (*quantity, error) { return nil, Unavailable("order") })
	assert.Equal(t, http.StatusInternalServerError, serve(down, "").Code)
}
