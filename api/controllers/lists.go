package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/calebmorris/cartly-backend/api/middleware"
	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/api/validators"
	listsvc "github.com/calebmorris/cartly-backend/internal/lists"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

type autoSaveRequest struct {
	Name string `json:"name"`
}

// ListAutoSave snapshots the current cart into today's list, creating
// or updating the day's auto-saved entry.
func ListAutoSave(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload autoSaveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AutoSave(r.Context(), userID, store, validators.SanitizeString(payload.Name, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type tagListRequest struct {
	CustomName string `json:"custom_name" validate:"required,max=120"`
}

// ListTag gives today's auto-saved list a custom name.
func ListTag(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload tagListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Tag(r.Context(), userID, store, validators.SanitizeString(payload.CustomName, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type todayResponse struct {
	Exists bool             `json:"exists"`
	List   *listsvc.ListDTO `json:"list,omitempty"`
}

// ListToday reports today's auto-saved list. A day with no auto-save
// yet answers 200 with exists false.
func ListToday(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		list, err := svc.Today(r.Context(), userID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, todayResponse{Exists: list != nil, List: list})
	}
}

type saveListRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// ListSaveAsNew saves the current cart as a standalone named list,
// independent of the daily auto-save slot.
func ListSaveAsNew(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload saveListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.SaveAsNew(r.Context(), userID, store, validators.SanitizeString(payload.Name, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, list)
	}
}

// ListsIndex returns all saved lists, newest first. An optional
// store_number query restricts the result to one store.
func ListsIndex(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var store *int
		if raw := strings.TrimSpace(r.URL.Query().Get("store_number")); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store_number must be a positive integer"))
				return
			}
			store = &value
		}

		lists, err := svc.List(r.Context(), userID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lists)
	}
}

// ListGet returns one saved list with its items.
func ListGet(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		listID, err := pathUUID(r, "listId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Get(r.Context(), userID, listID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ListLoad replaces the cart with the contents of a saved list.
func ListLoad(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		listID, err := pathUUID(r, "listId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Load(r.Context(), userID, store, listID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListDelete removes a saved list and its items.
func ListDelete(svc listsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		listID, err := pathUUID(r, "listId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, listID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "List deleted"})
	}
}
