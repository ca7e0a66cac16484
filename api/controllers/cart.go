package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calebmorris/cartly-backend/api/middleware"
	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/api/validators"
	cartsvc "github.com/calebmorris/cartly-backend/internal/cart"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

// CartGet returns the caller's cart for their current store.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		dto, err := svc.GetCart(r.Context(), userID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// CartAddItem adds a product to the cart, merging quantity when the
// product is already present.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload cartsvc.AddItemInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), userID, store, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateCartQuantityRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity float64   `json:"quantity" validate:"required,gt=0"`
}

// CartUpdateQuantity sets the quantity of a single cart item.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload updateCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateQuantity(r.Context(), userID, payload.ItemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// CartRemoveItem drops one item from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Item removed"})
	}
}

// CartClear empties the cart without recording purchases.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		if err := svc.Clear(r.Context(), userID, store); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Cart cleared"})
	}
}

// CartComplete finishes a shopping trip: purchase counts are recorded
// for frequent-item learning and the cart is emptied.
func CartComplete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		if err := svc.Complete(r.Context(), userID, store); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Shopping trip completed"})
	}
}

// CartUpdateFrequent records the current cart contents in the
// purchase counters while leaving the cart in place.
func CartUpdateFrequent(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		if err := svc.RecordPurchases(r.Context(), userID, store); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Frequent items updated"})
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id in path")
	}
	return id, nil
}
