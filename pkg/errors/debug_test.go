package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email", TableName: "users", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert user: %w", pgErr), "email already registered")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.Postgres == nil || d.Postgres.Code != "23505" || d.Postgres.Constraint != "ux_users_email" || d.Postgres.Table != "users" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) < 3 {
		t.Fatalf("expected at least 3 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
}

func TestDumpExtractsPqDetails(t *testing.T) {
	pqErr := &pq.Error{Code: "23514", Constraint: "chk_products_stock", Table: "products", Message: "check violation"}
	d := Dump(fmt.Errorf("decrement stock: %w", pqErr))
	if d.Postgres == nil || d.Postgres.Code != "23514" || d.Postgres.Constraint != "chk_products_stock" {
		t.Fatalf("unexpected pq fields %+v", d)
	}
	if d.Code != "" {
		t.Fatalf("untyped error should not carry a code, got %s", d.Code)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || len(d.Chain) != 0 {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
