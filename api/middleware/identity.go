package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/internal/auth"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

const anonymousIDHeader = "X-Anonymous-Id"

type identityResolver interface {
	ResolveIdentity(ctx context.Context, bearerToken, anonymousID string) (*auth.Identity, error)
}

// Identity resolves every request to a local user. A valid bearer token
// yields the authenticated account; anything else falls back to the
// client-supplied anonymous id, minting a fresh anonymous user when none
// is given. The resolved anonymous id is echoed back so the client can
// persist it.
func Identity(resolver identityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ident, err := resolver.ResolveIdentity(ctx, bearerToken(r), r.Header.Get(anonymousIDHeader))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if ident.IsAnonymous {
				w.Header().Set(anonymousIDHeader, ident.UserID.String())
			}
			if logg != nil {
				ctx = logg.WithUserID(ctx, ident.UserID.String())
				ctx = logg.WithStoreNumber(ctx, ident.StoreNumber)
			}
			ctx = WithIdentity(ctx, ident)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
