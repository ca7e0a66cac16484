package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorris/cartly-backend/api/middleware"
	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/api/validators"
	favsvc "github.com/calebmorris/cartly-backend/internal/favorites"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

const defaultFrequentLimit = 20

// FrequentItems returns auto-learned purchase suggestions, most
// purchased first.
func FrequentItems(svc favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", defaultFrequentLimit, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.GetFrequent(r.Context(), userID, store, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// Favorites returns the caller's manually starred products.
func Favorites(svc favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		items, err := svc.GetFavorites(r.Context(), userID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// StarFavorite marks a product as a favorite.
func StarFavorite(svc favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload favsvc.StarInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Star(r.Context(), userID, store, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": "Favorite added"})
	}
}

// UnstarFavorite removes the favorite flag from a product.
func UnstarFavorite(svc favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		productName, err := pathProductName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unstar(r.Context(), userID, store, productName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Favorite removed"})
	}
}

// IsFavorite reports whether a product is starred.
func IsFavorite(svc favsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		productName, err := pathProductName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		starred, err := svc.IsStarred(r.Context(), userID, store, productName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"is_favorite": starred})
	}
}

// pathProductName pulls the product name out of the URL. Product names
// carry spaces and punctuation, so the segment arrives percent-encoded.
func pathProductName(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "productName")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product name in path")
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	return decoded, nil
}
