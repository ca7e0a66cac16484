package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calebmorris/cartly-backend/internal/users"
	pkgauth "github.com/calebmorris/cartly-backend/pkg/auth"
	"github.com/calebmorris/cartly-backend/pkg/config"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/supabase"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	confirmEmailMessage  = "Check your email to confirm your account"
	resetRequestMessage  = "If that email exists, a reset link has been sent"
	passwordResetMessage = "Password updated successfully"
)

// Service defines the behavior needed by the auth controller and the
// identity middleware.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	ForgotPassword(ctx context.Context, email string) string
	ResetPassword(ctx context.Context, accessToken, newPassword string) error
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	Config() PublicConfig
	ResolveIdentity(ctx context.Context, bearerToken, anonymousID string) (*Identity, error)
}

type identityProvider interface {
	SignUp(ctx context.Context, email, password string) (*supabase.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (supabase.AuthUser, *supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
}

type tokenCache interface {
	CacheIdentity(ctx context.Context, digest, payload string, ttl time.Duration) error
	GetCachedIdentity(ctx context.Context, digest string) (string, error)
	DropCachedIdentity(ctx context.Context, digest string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	provider     identityProvider
	users        users.UserRepository
	cache        tokenCache
	tx           txRunner
	cfg          config.SupabaseConfig
	defaultStore int
	now          func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Provider     identityProvider
	Users        users.UserRepository
	Cache        tokenCache
	Tx           txRunner
	Supabase     config.SupabaseConfig
	DefaultStore int
	Now          func() time.Time
}

// NewService constructs the auth service. Cache is optional; without it
// every request re-verifies the bearer token locally.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		provider:     params.Provider,
		users:        params.Users,
		cache:        params.Cache,
		tx:           params.Tx,
		cfg:          params.Supabase,
		defaultStore: params.DefaultStore,
		now:          now,
	}, nil
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error) {
	result, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(result.User.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provider returned an invalid user id")
	}

	if result.Session == nil {
		// Email confirmation pending. The local row is created on first
		// verified sign-in.
		return &SessionResponse{
			UserID:  userID,
			Email:   result.User.Email,
			Message: confirmEmailMessage,
		}, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		if _, err := repo.EnsureAuthenticated(ctx, userID, result.User.Email, s.defaultStore); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		if req.AnonymousUserID == nil {
			return nil
		}
		anonID, parseErr := uuid.Parse(*req.AnonymousUserID)
		if parseErr != nil || anonID == userID {
			return nil
		}
		if err := repo.MigrateAnonymousData(ctx, anonID, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrate anonymous data")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SessionResponse{
		UserID:       userID,
		Email:        result.User.Email,
		AccessToken:  result.Session.AccessToken,
		RefreshToken: result.Session.RefreshToken,
	}, nil
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error) {
	user, session, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provider returned an invalid user id")
	}

	if _, err := s.users.EnsureAuthenticated(ctx, userID, user.Email, s.defaultStore); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert user")
	}
	if err := s.users.UpdateLastLogin(ctx, userID, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	return &SessionResponse{
		UserID:       userID,
		Email:        user.Email,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

func (s *service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing access token")
	}
	if s.cache != nil {
		// Revocation must not be blocked by a cache outage.
		_ = s.cache.DropCachedIdentity(ctx, pkgauth.TokenDigest(accessToken))
	}
	return s.provider.SignOut(ctx, accessToken)
}

// ForgotPassword requests a reset email and always returns the same
// message so account existence is never revealed.
func (s *service) ForgotPassword(ctx context.Context, email string) string {
	_ = s.provider.SendPasswordReset(ctx, email)
	return resetRequestMessage
}

func (s *service) ResetPassword(ctx context.Context, accessToken, newPassword string) error {
	if accessToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing access token")
	}
	return s.provider.UpdatePassword(ctx, accessToken, newPassword)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return &MeResponse{
		UserID:      user.ID,
		Email:       user.Email,
		IsAnonymous: user.IsAnonymous,
		StoreNumber: user.StoreNumber,
	}, nil
}

func (s *service) Config() PublicConfig {
	return PublicConfig{
		ProviderURL: s.cfg.URL,
		AnonKey:     s.cfg.AnonKey,
	}
}
