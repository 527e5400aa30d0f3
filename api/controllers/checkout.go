package controllers

import (
	"net/http"
	"strings"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	"github.com/goldjewelmy/goldstore-backend/api/validators"
	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	checkoutsvc "github.com/goldjewelmy/goldstore-backend/internal/checkout"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// Checkout submits the session's cart: order, payment session, cart cleared.
// The storefront origin for the gateway redirects comes from the Origin
// header when it is one of the allowed origins.
func Checkout(svc checkoutsvc.Service, store cart.Store, allowedOrigins []string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.Request
		if err := validators.DecodeJSON(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}

		result, err := svc.Checkout(r.Context(), c, payload, requestOrigin(r, allowedOrigins))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// requestOrigin returns the Origin header only when allow-listed; an empty
// result lets the payment service fall back to its configured origin.
func requestOrigin(r *http.Request, allowed []string) string {
	origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
	if origin == "" {
		return ""
	}
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimRight(strings.TrimSpace(candidate), "/"), origin) {
			return origin
		}
	}
	return ""
}
