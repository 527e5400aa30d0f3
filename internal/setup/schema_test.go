package setup

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/schema"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

func TestEnsureSchemaCreatesOnlyMissingTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc, err := NewService(db, nil, schema.Postgres, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range schema.Postgres.Tables {
		probe := mock.ExpectQuery(regexp.QuoteMeta(probeQuery(table.Name)))
		// categories and products already exist
		if table.Name == "categories" || table.Name == "products" {
			probe.WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
			continue
		}
		probe.WillReturnError(errors.New(`relation "` + table.Name + `" does not exist`))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE " + table.Name + " (")).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	report, err := svc.EnsureSchema(context.Background())
	if err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if !report.Success || len(report.Tables) != 8 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Tables[0].Status != TableExists || report.Tables[1].Status != TableExists {
		t.Fatalf("expected existing tables first, got %+v", report.Tables[:2])
	}
	for _, outcome := range report.Tables[2:] {
		if outcome.Status != TableCreated {
			t.Fatalf("expected %s created, got %s", outcome.Table, outcome.Status)
		}
	}
	if report.Tables[7].Table != "order_items" {
		t.Fatalf("expected order_items last, got %s", report.Tables[7].Table)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaStopsOnCreateFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc, _ := NewService(db, nil, schema.Postgres, nil)

	mock.ExpectExec("CREATE EXTENSION").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeQuery("categories"))).WillReturnError(errors.New("missing"))
	mock.ExpectExec("CREATE TABLE categories").WillReturnError(errors.New("permission denied"))

	_, err = svc.EnsureSchema(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
