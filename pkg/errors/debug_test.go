package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsDriverFields(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key", TableName: "orders", Message: "duplicate key"}
	d := Dump(Wrap(CodeConflict, fmt.Errorf("insert order: %w", pgxErr), "Order number taken"))
	if d.Code != CodeConflict {
		t.Fatalf("unexpected code %q", d.Code)
	}
	if d.DB == nil || d.DB.SQLState != "23505" || d.DB.Constraint != "orders_order_number_key" || d.DB.Table != "orders" {
		t.Fatalf("unexpected db fields %+v", d.DB)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected three links in chain, got %v", d.Chain)
	}

	pqErr := &pq.Error{Code: "23503", Table: "order_items", Column: "product_id"}
	d = Dump(fmt.Errorf("insert items: %w", pqErr))
	if d.DB == nil || d.DB.SQLState != "23503" || d.DB.Column != "product_id" {
		t.Fatalf("unexpected pq fields %+v", d.DB)
	}
	fields := d.Fields()
	if fields["db_state"] != "23503" || fields["db_table"] != "order_items" {
		t.Fatalf("unexpected log fields %v", fields)
	}
}

func TestDumpPlainError(t *testing.T) {
	if d := Dump(nil); d.Message != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
	fields := Dump(stdErrors.New("boom")).Fields()
	if fields["error"] != "boom" {
		t.Fatalf("unexpected message %v", fields["error"])
	}
	if _, ok := fields["db_state"]; ok {
		t.Fatal("db fields must be omitted without a driver error")
	}
}
