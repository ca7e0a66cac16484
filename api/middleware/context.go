package middleware

import (
	"context"

	"github.com/calebmorris/cartly-backend/internal/auth"
	"github.com/google/uuid"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the resolved requester, or nil when the
// identity middleware did not run.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	if ident, ok := ctx.Value(ctxIdentity).(*auth.Identity); ok {
		return ident
	}
	return nil
}

// UserIDFromContext returns the resolved user id, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ident := IdentityFromContext(ctx); ident != nil {
		return ident.UserID
	}
	return uuid.Nil
}

// StoreNumberFromContext returns the requester's selected store, or zero.
func StoreNumberFromContext(ctx context.Context) int {
	if ident := IdentityFromContext(ctx); ident != nil {
		return ident.StoreNumber
	}
	return 0
}

// WithIdentity injects the resolved identity into the context.
func WithIdentity(ctx context.Context, ident *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, ident)
}
