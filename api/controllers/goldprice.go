package controllers

import (
	"net/http"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	"github.com/goldjewelmy/goldstore-backend/api/validators"
	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// LatestGoldPrice never fails: the service substitutes the fallback quote.
func LatestGoldPrice(svc goldprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gold price service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Latest(r.Context()))
	}
}

func GoldPriceHistory(svc goldprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gold price service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", goldprice.DefaultHistoryDays, 1, goldprice.MaxHistoryDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		samples, err := svc.History(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, samples)
	}
}
