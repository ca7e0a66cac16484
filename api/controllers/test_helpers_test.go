package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calebmorris/cartly-backend/api/middleware"
	authsvc "github.com/calebmorris/cartly-backend/internal/auth"
)

func withTestIdentity(req *http.Request, userID uuid.UUID, store int) *http.Request {
	ident := &authsvc.Identity{UserID: userID, IsAnonymous: true, StoreNumber: store}
	return req.WithContext(middleware.WithIdentity(req.Context(), ident))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
