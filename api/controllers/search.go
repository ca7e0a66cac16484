package controllers

import (
	"net/http"
	"strings"

	"github.com/calebmorris/cartly-backend/api/middleware"
	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/api/validators"
	searchsvc "github.com/calebmorris/cartly-backend/internal/search"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

type searchRequest struct {
	SearchTerm string `json:"search_term" validate:"required,max=200"`
	MaxResults int    `json:"max_results" validate:"omitempty,gte=1,lte=50"`
}

// SearchProducts answers a product search for the caller's store,
// cache-first. MaxResults trims the returned slice; the provider's own
// page size is fixed by config.
func SearchProducts(svc searchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := middleware.StoreNumberFromContext(r.Context())

		var payload searchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		term := strings.TrimSpace(payload.SearchTerm)
		if term == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "search term is required"))
			return
		}

		result, err := svc.Search(r.Context(), term, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.MaxResults > 0 && len(result.Results) > payload.MaxResults {
			result.Results = result.Results[:payload.MaxResults]
		}

		responses.WriteSuccess(w, result)
	}
}
