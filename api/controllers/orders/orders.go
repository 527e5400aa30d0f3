package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	"github.com/goldjewelmy/goldstore-backend/api/validators"
	internalorders "github.com/goldjewelmy/goldstore-backend/internal/orders"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// Creator persists orders.
type Creator interface {
	Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error)
}

// Reader looks orders up by id or customer.
type Reader interface {
	Get(ctx context.Context, id uuid.UUID) (*internalorders.OrderDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]internalorders.OrderDTO, error)
}

// Create handles POST /api/orders. Field presence is checked by the order
// service so a missing items array fails before any row is written.
func Create(svc Creator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload internalorders.CreateOrderInput
		if err := validators.DecodeJSON(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Get handles GET /api/orders?orderId= (single order) or ?userId= (history).
func Get(svc Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		query := r.URL.Query()
		orderID := strings.TrimSpace(query.Get("orderId"))
		userID := strings.TrimSpace(query.Get("userId"))

		switch {
		case orderID != "":
			id, err := parseID(orderID, "orderId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			order, err := svc.Get(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, order)
		case userID != "":
			id, err := parseID(userID, "userId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			list, err := svc.ListByUser(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, list)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Missing userId or orderId parameter"))
		}
	}
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).WithDetails(map[string]string{field: "must be a valid id"})
	}
	return id, nil
}
