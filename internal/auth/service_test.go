package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calebmorris/cartly-backend/internal/users"
	pkgauth "github.com/calebmorris/cartly-backend/pkg/auth"
	"github.com/calebmorris/cartly-backend/pkg/config"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/supabase"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubProvider struct {
	signUpResult *supabase.SignUpResult
	signUpErr    error
	signInUser   supabase.AuthUser
	signInSess   *supabase.Session
	signInErr    error
	resetErr     error
	resetCalls   int
	signOutCalls int
}

func (s *stubProvider) SignUp(ctx context.Context, email, password string) (*supabase.SignUpResult, error) {
	return s.signUpResult, s.signUpErr
}

func (s *stubProvider) SignIn(ctx context.Context, email, password string) (supabase.AuthUser, *supabase.Session, error) {
	return s.signInUser, s.signInSess, s.signInErr
}

func (s *stubProvider) SignOut(ctx context.Context, accessToken string) error {
	s.signOutCalls++
	return nil
}

func (s *stubProvider) SendPasswordReset(ctx context.Context, email string) error {
	s.resetCalls++
	return s.resetErr
}

func (s *stubProvider) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	return nil
}

type stubUsers struct {
	ensured        []uuid.UUID
	migratedFrom   uuid.UUID
	migratedTo     uuid.UUID
	migrateCalls   int
	lastLoginID    uuid.UUID
	anonCreated    []uuid.UUID
	findUser       *models.User
	findErr        error
	storeNumber    int
	anonymousStore int
}

func (s *stubUsers) WithTx(tx *gorm.DB) users.UserRepository { return s }

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser, s.findErr
}

func (s *stubUsers) GetOrCreateAnonymous(ctx context.Context, id uuid.UUID, defaultStore int) (*models.User, error) {
	s.anonCreated = append(s.anonCreated, id)
	store := s.anonymousStore
	if store == 0 {
		store = defaultStore
	}
	return &models.User{ID: id, IsAnonymous: true, StoreNumber: store}, nil
}

func (s *stubUsers) EnsureAuthenticated(ctx context.Context, id uuid.UUID, email string, defaultStore int) (*models.User, error) {
	s.ensured = append(s.ensured, id)
	store := s.storeNumber
	if store == 0 {
		store = defaultStore
	}
	return &models.User{ID: id, Email: &email, StoreNumber: store}, nil
}

func (s *stubUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginID = id
	return nil
}

func (s *stubUsers) GetStoreNumber(ctx context.Context, id uuid.UUID) (int, error) {
	return s.storeNumber, nil
}

func (s *stubUsers) UpdateStoreNumber(ctx context.Context, id uuid.UUID, storeNumber int) error {
	return nil
}

func (s *stubUsers) ClearStoreData(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	return nil
}

func (s *stubUsers) MigrateAnonymousData(ctx context.Context, anonymousID, authenticatedID uuid.UUID) error {
	s.migrateCalls++
	s.migratedFrom = anonymousID
	s.migratedTo = authenticatedID
	return nil
}

func (s *stubUsers) DeleteStaleAnonymous(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubUsers) GetAnonymousStats(ctx context.Context) (users.AnonymousStats, error) {
	return users.AnonymousStats{}, nil
}

type stubCache struct {
	stored  map[string]string
	ttls    map[string]time.Duration
	dropped []string
}

func newStubCache() *stubCache {
	return &stubCache{stored: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubCache) CacheIdentity(ctx context.Context, digest, payload string, ttl time.Duration) error {
	s.stored[digest] = payload
	s.ttls[digest] = ttl
	return nil
}

func (s *stubCache) GetCachedIdentity(ctx context.Context, digest string) (string, error) {
	payload, ok := s.stored[digest]
	if !ok {
		return "", errors.New("cache miss")
	}
	return payload, nil
}

func (s *stubCache) DropCachedIdentity(ctx context.Context, digest string) error {
	s.dropped = append(s.dropped, digest)
	delete(s.stored, digest)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testSupabaseConfig() config.SupabaseConfig {
	return config.SupabaseConfig{
		URL:           "https://example.supabase.co",
		AnonKey:       "anon-key",
		JWTSecret:     "unit-test-secret",
		TokenCacheTTL: 5 * time.Minute,
	}
}

func mintToken(t *testing.T, cfg config.SupabaseConfig, userID uuid.UUID, email string, expiresIn time.Duration) string {
	t.Helper()
	claims := &pkgauth.AccessTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func newTestService(t *testing.T, provider *stubProvider, repo *stubUsers, cache *stubCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Provider:     provider,
		Users:        repo,
		Cache:        cache,
		Tx:           stubTxRunner{},
		Supabase:     testSupabaseConfig(),
		DefaultStore: 86,
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestSignUpMigratesAnonymousData(t *testing.T) {
	userID := uuid.New()
	anonID := uuid.New()
	provider := &stubProvider{
		signUpResult: &supabase.SignUpResult{
			User:    supabase.AuthUser{ID: userID.String(), Email: "shopper@example.com"},
			Session: &supabase.Session{AccessToken: "access", RefreshToken: "refresh"},
		},
	}
	repo := &stubUsers{}
	svc := newTestService(t, provider, repo, newStubCache())

	anonStr := anonID.String()
	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:           "shopper@example.com",
		Password:        "password123",
		AnonymousUserID: &anonStr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "access" {
		t.Fatalf("expected access token, got %q", resp.AccessToken)
	}
	if len(repo.ensured) != 1 || repo.ensured[0] != userID {
		t.Fatalf("expected local upsert for %s, got %v", userID, repo.ensured)
	}
	if repo.migrateCalls != 1 || repo.migratedFrom != anonID || repo.migratedTo != userID {
		t.Fatalf("expected migration %s -> %s, got %s -> %s", anonID, userID, repo.migratedFrom, repo.migratedTo)
	}
}

func TestSignUpPendingConfirmationSkipsLocalRow(t *testing.T) {
	userID := uuid.New()
	provider := &stubProvider{
		signUpResult: &supabase.SignUpResult{
			User: supabase.AuthUser{ID: userID.String(), Email: "shopper@example.com"},
		},
	}
	repo := &stubUsers{}
	svc := newTestService(t, provider, repo, newStubCache())

	resp, err := svc.SignUp(context.Background(), SignUpRequest{Email: "shopper@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "" || resp.RefreshToken != "" {
		t.Fatalf("expected empty tokens, got %q / %q", resp.AccessToken, resp.RefreshToken)
	}
	if resp.Message == "" {
		t.Fatalf("expected confirmation message")
	}
	if len(repo.ensured) != 0 {
		t.Fatalf("expected no local row before confirmation, got %v", repo.ensured)
	}
}

func TestSignInRecordsLastLogin(t *testing.T) {
	userID := uuid.New()
	provider := &stubProvider{
		signInUser: supabase.AuthUser{ID: userID.String(), Email: "shopper@example.com"},
		signInSess: &supabase.Session{AccessToken: "access", RefreshToken: "refresh"},
	}
	repo := &stubUsers{}
	svc := newTestService(t, provider, repo, newStubCache())

	resp, err := svc.SignIn(context.Background(), SignInRequest{Email: "shopper@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, resp.UserID)
	}
	if repo.lastLoginID != userID {
		t.Fatalf("expected last login update for %s, got %s", userID, repo.lastLoginID)
	}
}

func TestForgotPasswordNeverRevealsAccounts(t *testing.T) {
	okProvider := &stubProvider{}
	failingProvider := &stubProvider{resetErr: errors.New("no such account")}
	repo := &stubUsers{}

	okMsg := newTestService(t, okProvider, repo, newStubCache()).
		ForgotPassword(context.Background(), "known@example.com")
	failMsg := newTestService(t, failingProvider, repo, newStubCache()).
		ForgotPassword(context.Background(), "unknown@example.com")

	if okMsg != failMsg {
		t.Fatalf("responses differ: %q vs %q", okMsg, failMsg)
	}
	if failingProvider.resetCalls != 1 {
		t.Fatalf("expected provider call even for unknown accounts")
	}
}

func TestSignOutDropsCachedIdentity(t *testing.T) {
	provider := &stubProvider{}
	cache := newStubCache()
	svc := newTestService(t, provider, &stubUsers{}, cache)

	token := "some-access-token"
	digest := pkgauth.TokenDigest(token)
	cache.stored[digest] = `{"user_id":"x"}`

	if err := svc.SignOut(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.signOutCalls != 1 {
		t.Fatalf("expected provider sign out")
	}
	if len(cache.dropped) != 1 || cache.dropped[0] != digest {
		t.Fatalf("expected cached identity drop for %s, got %v", digest, cache.dropped)
	}
}

func TestResolveIdentityVerifiesAndCachesToken(t *testing.T) {
	userID := uuid.New()
	cfg := testSupabaseConfig()
	token := mintToken(t, cfg, userID, "shopper@example.com", time.Hour)

	repo := &stubUsers{storeNumber: 42}
	cache := newStubCache()
	svc := newTestService(t, &stubProvider{}, repo, cache)

	ident, err := svc.ResolveIdentity(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.UserID != userID || ident.IsAnonymous {
		t.Fatalf("unexpected identity: %+v", ident)
	}
	if ident.StoreNumber != 42 {
		t.Fatalf("expected store 42, got %d", ident.StoreNumber)
	}

	digest := pkgauth.TokenDigest(token)
	if _, ok := cache.stored[digest]; !ok {
		t.Fatalf("expected identity cached under token digest")
	}
	if ttl := cache.ttls[digest]; ttl <= 0 || ttl > cfg.TokenCacheTTL {
		t.Fatalf("cache ttl out of range: %s", ttl)
	}

	// Second resolution must come from the cache, not another upsert.
	if _, err := svc.ResolveIdentity(context.Background(), token, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.ensured) != 1 {
		t.Fatalf("expected a single upsert, got %d", len(repo.ensured))
	}
}

func TestResolveIdentityReadsCurrentStoreOnCacheHit(t *testing.T) {
	userID := uuid.New()
	cfg := testSupabaseConfig()
	token := mintToken(t, cfg, userID, "shopper@example.com", time.Hour)

	repo := &stubUsers{storeNumber: 86}
	cache := newStubCache()
	svc := newTestService(t, &stubProvider{}, repo, cache)

	ident, err := svc.ResolveIdentity(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.StoreNumber != 86 {
		t.Fatalf("expected store 86, got %d", ident.StoreNumber)
	}

	// The user switches stores while the token is still cached.
	repo.storeNumber = 100

	ident, err = svc.ResolveIdentity(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.StoreNumber != 100 {
		t.Fatalf("expected the switched store 100, got %d", ident.StoreNumber)
	}
	if len(repo.ensured) != 1 {
		t.Fatalf("expected the second resolution to hit the cache, got %d upserts", len(repo.ensured))
	}
}

func TestResolveIdentityCapsCacheTTLAtTokenExpiry(t *testing.T) {
	userID := uuid.New()
	cfg := testSupabaseConfig()
	token := mintToken(t, cfg, userID, "shopper@example.com", time.Minute)

	cache := newStubCache()
	svc := newTestService(t, &stubProvider{}, &stubUsers{}, cache)

	if _, err := svc.ResolveIdentity(context.Background(), token, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl := cache.ttls[pkgauth.TokenDigest(token)]; ttl > time.Minute {
		t.Fatalf("cache ttl %s exceeds token lifetime", ttl)
	}
}

func TestResolveIdentityFallsBackToAnonymous(t *testing.T) {
	anonID := uuid.New()
	repo := &stubUsers{}
	svc := newTestService(t, &stubProvider{}, repo, newStubCache())

	ident, err := svc.ResolveIdentity(context.Background(), "not-a-jwt", anonID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ident.IsAnonymous || ident.UserID != anonID {
		t.Fatalf("expected anonymous identity %s, got %+v", anonID, ident)
	}
	if len(repo.anonCreated) != 1 || repo.anonCreated[0] != anonID {
		t.Fatalf("expected get-or-create for %s, got %v", anonID, repo.anonCreated)
	}
}

func TestResolveIdentityMintsFreshAnonymousUser(t *testing.T) {
	repo := &stubUsers{}
	svc := newTestService(t, &stubProvider{}, repo, newStubCache())

	ident, err := svc.ResolveIdentity(context.Background(), "", "garbage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ident.IsAnonymous || ident.UserID == uuid.Nil {
		t.Fatalf("expected fresh anonymous identity, got %+v", ident)
	}
}

func TestMeNotFound(t *testing.T) {
	repo := &stubUsers{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, &stubProvider{}, repo, newStubCache())

	_, err := svc.Me(context.Background(), uuid.New())
	if err == nil {
		t.Fatalf("expected error")
	}
	parsed := pkgerrors.As(err)
	if parsed == nil || parsed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
