package cart

import (
	"context"
	"testing"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"$3.49", "3.49"},
		{"3.49", "3.49"},
		{"$1,299.00", "1299"},
		{" $0.59 ", "0.59"},
		{"", "0"},
		{"free", "0"},
	}
	for _, tc := range cases {
		if got := ParsePrice(tc.in); got.String() != tc.want {
			t.Fatalf("ParsePrice(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestServiceAddItemDefaultsQuantity(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, &stubRecorder{})

	got, err := svc.AddItem(context.Background(), uuid.New(), 86, AddItemInput{
		ProductName: "Whole Milk",
		Price:       "$3.49",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.upserted == nil || !repo.upserted.Quantity.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected quantity to default to 1, got %+v", repo.upserted)
	}
	if got.Price != "$3.49" {
		t.Fatalf("unexpected price display: %q", got.Price)
	}
}

func TestServiceAddItemRequiresName(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, &stubRecorder{})

	_, err := svc.AddItem(context.Background(), uuid.New(), 86, AddItemInput{ProductName: "  "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceUpdateQuantityRejectsNonPositive(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, &stubRecorder{})

	_, err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceGetCartSubtotal(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubCartRepo{items: []models.CartItem{
		{ID: uuid.New(), ProductName: "Milk", Price: decimal.RequireFromString("3.49"), Quantity: decimal.NewFromInt(2)},
		{ID: uuid.New(), ProductName: "Bananas", Price: decimal.RequireFromString("0.59"), Quantity: decimal.RequireFromString("1.5"), IsSoldByWeight: true},
	}}
	svc := newTestService(t, repo, &stubRecorder{})

	cart, err := svc.GetCart(context.Background(), userID, 86)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ItemCount != 2 {
		t.Fatalf("expected 2 items, got %d", cart.ItemCount)
	}
	// 3.49*2 + 0.59*1.5 = 7.865 rendered at two decimals
	if cart.Subtotal != "$7.87" {
		t.Fatalf("unexpected subtotal: %q", cart.Subtotal)
	}
}

func TestServiceCompleteRecordsThenClears(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubCartRepo{}
	rec := &stubRecorder{}
	svc := newTestService(t, repo, rec)

	if err := svc.Complete(context.Background(), userID, 86); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one purchase recording, got %d", rec.calls)
	}
	if !repo.cleared {
		t.Fatal("expected cart to be cleared")
	}
}

func TestServiceCompleteRollsBackOnRecorderFailure(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	rec := &stubRecorder{err: pkgerrors.New(pkgerrors.CodeInternal, "counter write failed")}
	svc := newTestService(t, repo, rec)

	err := svc.Complete(context.Background(), uuid.New(), 86)
	if err == nil {
		t.Fatal("expected error from recorder")
	}
	if repo.cleared {
		t.Fatal("cart must not clear when recording fails")
	}
}

func newTestService(t *testing.T, repo CartRepository, rec purchaseRecorder) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, rec)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRecorder struct {
	calls int
	err   error
}

func (s *stubRecorder) RecordCartPurchases(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int) error {
	if s.err != nil {
		return s.err
	}
	s.calls++
	return nil
}

type stubCartRepo struct {
	items    []models.CartItem
	upserted *models.CartItem
	cleared  bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) ListByUser(ctx context.Context, userID uuid.UUID, storeNumber int) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) FindForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (s *stubCartRepo) Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	s.upserted = item
	return item, nil
}

func (s *stubCartRepo) InsertMany(ctx context.Context, items []models.CartItem) error { return nil }

func (s *stubCartRepo) UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity decimal.Decimal) (*models.CartItem, error) {
	return &models.CartItem{ID: itemID, UserID: userID, Quantity: quantity}, nil
}

func (s *stubCartRepo) Remove(ctx context.Context, itemID, userID uuid.UUID) error { return nil }

func (s *stubCartRepo) Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	s.cleared = true
	return nil
}

func (s *stubCartRepo) Count(ctx context.Context, userID uuid.UUID, storeNumber int) (int64, error) {
	return int64(len(s.items)), nil
}
