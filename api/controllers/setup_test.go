package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goldjewelmy/goldstore-backend/internal/setup"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

type stubSetup struct {
	err error
}

func (s stubSetup) EnsureSchema(context.Context) (*setup.SchemaReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &setup.SchemaReport{Success: true, Message: "Database setup completed", Tables: []setup.TableOutcome{}}, nil
}

func (s stubSetup) Seed(context.Context) (*setup.SeedReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &setup.SeedReport{}, nil
}

func TestSetupDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupDatabase(stubSetup{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/setup/database", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	failing := stubSetup{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("permission denied"), "create table orders")}
	SetupDatabase(failing, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/setup/database", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSeedDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	SeedDatabase(stubSetup{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/setup/seed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
