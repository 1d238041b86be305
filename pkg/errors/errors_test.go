package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestCodeTable(t *testing.T) {
	want := map[Code]Metadata{
		CodeValidation:    {http.StatusBadRequest, false, "validation failed", true},
		CodeUnauthorized:  {http.StatusUnauthorized, false, "authentication required", false},
		CodeForbidden:     {http.StatusForbidden, false, "access denied", false},
		CodeNotFound:      {http.StatusNotFound, false, "resource not found", false},
		CodeConflict:      {http.StatusConflict, false, "conflict detected", false},
		CodeStateConflict: {http.StatusUnprocessableEntity, false, "state transition disallowed", true},
		CodeIdempotency:   {http.StatusConflict, false, "idempotency key reused", true},
		CodeRateLimit:     {http.StatusTooManyRequests, false, "rate limit exceeded", false},
		CodeOutOfStock:    {http.StatusConflict, false, "insufficient stock", true},
		CodeInternal:      {http.StatusInternalServerError, true, "internal server error", false},
		CodeDependency:    {http.StatusServiceUnavailable, true, "dependency unavailable", true},
	}
	for code, expected := range want {
		if got := MetadataFor(code); got != expected {
			t.Fatalf("%s: expected %+v got %+v", code, expected, got)
		}
	}
	if got := MetadataFor("NOPE"); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to 500, got %d", got.HTTPStatus)
	}
}

func TestWrapKeepsCauseInChainAndText(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "db: load promotions")

	if !stdErrors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	if err.Error() != "DEPENDENCY_ERROR: db: load promotions: connection reset" {
		t.Fatalf("unexpected text %q", err.Error())
	}
	if Wrap(CodeNotFound, nil, "product not found").Error() != "NOT_FOUND: product not found" {
		t.Fatal("nil cause should render like New")
	}
}

func TestWithDetailsAndNilSafety(t *testing.T) {
	err := New(CodeValidation, "bad body").WithDetails(map[string]string{"quantity": "must be >= 1"})
	if err.Details() == nil || err.Message() != "bad body" {
		t.Fatalf("unexpected error state %+v", err)
	}

	var nilErr *Error
	if nilErr.Code() != CodeInternal || nilErr.Message() != "" || nilErr.Details() != nil || nilErr.WithDetails(1) != nil {
		t.Fatal("nil receiver methods should be safe")
	}
}

func TestIsCodeThroughFmtWrap(t *testing.T) {
	inner := Newf(CodeOutOfStock, "only %d left", 2)
	outer := fmt.Errorf("create order: %w", inner)

	if As(outer) != inner {
		t.Fatal("As should return the typed error")
	}
	if !IsCode(outer, CodeOutOfStock) || IsCode(outer, CodeNotFound) {
		t.Fatal("IsCode mismatch")
	}
	if IsCode(nil, CodeInternal) || IsCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatal("untyped errors carry no code")
	}
}

func TestDumpCollectsChainAndPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key", TableName: "products", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert product: %w", pgErr), "slug already used")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %v", d.Chain)
	}
	if d.Postgres == nil || d.Postgres.Code != "23505" || d.Postgres.Constraint != "products_slug_key" {
		t.Fatalf("unexpected postgres detail %+v", d.Postgres)
	}
}

func TestPostgresDetailFromLibPQ(t *testing.T) {
	err := fmt.Errorf("update stock: %w", &pq.Error{Code: "23514", Constraint: "products_stock_check", Table: "products"})

	pg := PostgresDetail(err)
	if pg == nil || pg.Code != "23514" || pg.Table != "products" {
		t.Fatalf("unexpected detail %+v", pg)
	}
	if PostgresDetail(stdErrors.New("plain")) != nil {
		t.Fatal("non-postgres errors have no detail")
	}
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatal("Dump(nil) should be empty")
	}
}
