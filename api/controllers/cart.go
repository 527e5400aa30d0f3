package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/api/middleware"
	"github.com/goldjewelmy/goldstore-backend/api/responses"
	"github.com/goldjewelmy/goldstore-backend/api/validators"
	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	"github.com/goldjewelmy/goldstore-backend/internal/catalog"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// productLookup resolves the catalog entry behind a cart line so the stored
// price snapshot comes from the catalog, not the client.
type productLookup interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error)
}

type addCartItemRequest struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	PriceRM  decimal.Decimal `json:"priceRM"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func GetCart(store cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// AddCartItem adds a product line. Quantity defaults to one; name, price and
// image are refreshed from the catalog when the product is known.
func AddCartItem(store cart.Store, products productLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		item := cart.Item{
			ID:       strings.TrimSpace(payload.ID),
			Name:     payload.Name,
			PriceRM:  payload.PriceRM,
			Image:    payload.Image,
			Quantity: payload.Quantity,
		}
		if products != nil {
			productID, err := uuid.Parse(item.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").WithDetails(map[string]string{"id": "must be a valid id"}))
				return
			}
			product, err := products.GetProductByID(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !product.InStock {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "Product is out of stock"))
				return
			}
			item.Name = product.Name
			item.PriceRM = product.Price
			item.Image = product.ImageURL
		}

		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}
		if err := c.AddItem(r.Context(), item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, c.View())
	}
}

// UpdateCartItem sets a line's quantity. Values below one leave the cart unchanged.
func UpdateCartItem(store cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}
		if err := c.SetQuantity(r.Context(), chi.URLParam(r, "itemID"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

func RemoveCartItem(store cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}
		if err := c.RemoveItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

func ClearCart(store cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := openCart(w, r, store, logg)
		if !ok {
			return
		}
		if err := c.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.View())
	}
}

// openCart loads the cart of the session resolved by middleware.CartSession.
func openCart(w http.ResponseWriter, r *http.Request, store cart.Store, logg *logger.Logger) (*cart.Cart, bool) {
	if store == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
		return nil, false
	}
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
		return nil, false
	}
	c, err := store.Open(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return c, true
}
