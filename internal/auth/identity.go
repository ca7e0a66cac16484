package auth

import (
	"context"
	"encoding/json"
	"time"

	pkgauth "github.com/calebmorris/cartly-backend/pkg/auth"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
)

// Identity is the resolved requester, either a verified provider account
// or an anonymous user.
type Identity struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       *string   `json:"email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	StoreNumber int       `json:"store_number"`
}

// ResolveIdentity turns request credentials into a local user. A valid
// bearer token wins; verified tokens are cached by digest so the JWT is
// only parsed once per cache window. Anything else falls back to the
// client-supplied anonymous id, or a fresh anonymous user.
func (s *service) ResolveIdentity(ctx context.Context, bearerToken, anonymousID string) (*Identity, error) {
	if bearerToken != "" {
		if ident, err := s.resolveBearer(ctx, bearerToken); err == nil {
			return ident, nil
		}
		// Expired or forged tokens degrade to anonymous instead of
		// failing the request outright.
	}
	return s.resolveAnonymous(ctx, anonymousID)
}

func (s *service) resolveBearer(ctx context.Context, token string) (*Identity, error) {
	digest := pkgauth.TokenDigest(token)
	if s.cache != nil {
		if payload, err := s.cache.GetCachedIdentity(ctx, digest); err == nil && payload != "" {
			var ident Identity
			if err := json.Unmarshal([]byte(payload), &ident); err == nil {
				// The cache only proves who the token belongs to. The
				// store number is read fresh so a store switch takes
				// effect on the next request, not after the TTL.
				store, err := s.users.GetStoreNumber(ctx, ident.UserID)
				if err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read store number")
				}
				ident.StoreNumber = store
				return &ident, nil
			}
		}
	}

	claims, err := pkgauth.ParseAccessToken(s.cfg, token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token subject is not a user id")
	}

	user, err := s.users.EnsureAuthenticated(ctx, userID, claims.Email, s.defaultStore)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert user")
	}
	ident := &Identity{
		UserID:      user.ID,
		Email:       user.Email,
		IsAnonymous: false,
		StoreNumber: user.StoreNumber,
	}

	if s.cache != nil {
		if ttl := s.cacheTTL(claims); ttl > 0 {
			if payload, err := json.Marshal(ident); err == nil {
				_ = s.cache.CacheIdentity(ctx, digest, string(payload), ttl)
			}
		}
	}
	return ident, nil
}

// cacheTTL caps the configured cache window at the token's own expiry so
// a revoked-by-expiration token never outlives its claims.
func (s *service) cacheTTL(claims *pkgauth.AccessTokenClaims) time.Duration {
	ttl := s.cfg.TokenCacheTTL
	if claims.ExpiresAt == nil {
		return ttl
	}
	untilExpiry := claims.ExpiresAt.Time.Sub(s.now())
	if untilExpiry <= 0 {
		return 0
	}
	if ttl <= 0 || untilExpiry < ttl {
		return untilExpiry
	}
	return ttl
}

func (s *service) resolveAnonymous(ctx context.Context, anonymousID string) (*Identity, error) {
	id, err := uuid.Parse(anonymousID)
	if err != nil || id == uuid.Nil {
		id = uuid.New()
	}
	user, err := s.users.GetOrCreateAnonymous(ctx, id, s.defaultStore)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve anonymous user")
	}
	return &Identity{
		UserID:      user.ID,
		IsAnonymous: true,
		StoreNumber: user.StoreNumber,
	}, nil
}
