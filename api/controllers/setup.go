package controllers

import (
	"context"
	"net/http"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	"github.com/goldjewelmy/goldstore-backend/internal/setup"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) (*setup.SchemaReport, error)
}

type Seeder interface {
	Seed(ctx context.Context) (*setup.SeedReport, error)
}

// SetupDatabase creates any missing storefront table and reports per table.
func SetupDatabase(svc SchemaEnsurer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "setup service unavailable"))
			return
		}
		report, err := svc.EnsureSchema(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "tables", len(report.Tables)), "setup.schema.ensured")
		}
		responses.WriteSuccess(w, report)
	}
}

func SeedDatabase(svc Seeder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "setup service unavailable"))
			return
		}
		report, err := svc.Seed(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
