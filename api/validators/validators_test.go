package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

type lineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=20"`
}

type sampleRequest struct {
	Phone   string      `json:"phone" validate:"required,vnphone"`
	Payment string      `json:"payment_method" validate:"required,oneof=cod vietqr"`
	Items   []lineInput `json:"items" validate:"required,min=1,dive"`
}

func TestIsVietnamesePhone(t *testing.T) {
	valid := []string{"0912345678", "+84912345678", "090 123 4567", "038-123-4567", "0701.234.567"}
	for _, v := range valid {
		assert.Truef(t, IsVietnamesePhone(v), "expected %q to be valid", v)
	}
	invalid := []string{"", "12345", "0212345678", "091234567", "+1 415 555 0100", "09123456789"}
	for _, v := range invalid {
		assert.Falsef(t, IsVietnamesePhone(v), "expected %q to be invalid", v)
	}
}

func TestDecodeJSONBodyValidatesNestedFields(t *testing.T) {
	body := `{"phone":"0912345678","payment_method":"card","items":[{"product_id":"p1","quantity":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details["payment_method"], "one of")
	assert.Contains(t, details["items[0].quantity"], "greater than or equal to 1")
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone":"0912345678","extra":1}`))
	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyShapeErrors(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    "",
		"trailing": `{"phone":"0912345678"} {"phone":"0987654321"}`,
		"too big":  `{"phone":"` + strings.Repeat("9", maxBodyBytes) + `"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dest sampleRequest
		err := DecodeJSONBody(req, &dest)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: %v", name, err)
	}
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	body := `{"phone":"+84 912 345 678","payment_method":"vietqr","items":[{"product_id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest sampleRequest
	require.NoError(t, DecodeJSONBody(req, &dest))
	assert.Equal(t, 2, dest.Items[0].Quantity)
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&min_price=-1&max_price=2000000&from=2026-01-01&to=bad", nil)

	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryAmount(req, "min_price")
	assert.Error(t, err)

	maxPrice, err := ParseQueryAmount(req, "max_price")
	require.NoError(t, err)
	require.NotNil(t, maxPrice)
	assert.EqualValues(t, 2_000_000, *maxPrice)

	missing, err := ParseQueryAmount(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	from, err := ParseQueryTime(req, "from")
	require.NoError(t, err)
	assert.Equal(t, 2026, from.Year())

	_, err = ParseQueryTime(req, "to")
	assert.Error(t, err)
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	assert.Equal(t, "điện", SanitizeString("  điện thoại ", 4))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
	assert.Nil(t, OptionalString("   ", 10))
}
