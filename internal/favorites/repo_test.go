package favorites

import (
	"context"
	"testing"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFavoritesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_number INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity NUMERIC NOT NULL,
  aisle TEXT,
  image_url TEXT,
  search_term TEXT NOT NULL DEFAULT '',
  is_sold_by_weight INTEGER NOT NULL DEFAULT 0,
  unit_price TEXT,
  added_at DATETIME,
  UNIQUE (user_id, store_number, product_name)
);`
	frequentItems := `
CREATE TABLE IF NOT EXISTS frequent_items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL,
  store_number INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  aisle TEXT,
  image_url TEXT,
  purchase_count INTEGER NOT NULL DEFAULT 1,
  is_manual INTEGER NOT NULL DEFAULT 0,
  is_sold_by_weight INTEGER NOT NULL DEFAULT 0,
  last_purchased DATETIME,
  UNIQUE (user_id, store_number, product_name)
);`
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(frequentItems).Error)
	return db
}

func addCartRow(t *testing.T, db *gorm.DB, userID uuid.UUID, store int, name string) {
	t.Helper()
	item := &models.CartItem{
		ID:          uuid.New(),
		UserID:      userID,
		StoreNumber: store,
		ProductName: name,
		Price:       decimal.RequireFromString("2.50"),
		Quantity:    decimal.NewFromInt(1),
	}
	require.NoError(t, db.Create(item).Error)
}

func TestRecordCartPurchasesCreatesAndIncrements(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	addCartRow(t, db, userID, 86, "Whole Milk")
	addCartRow(t, db, userID, 86, "Bread")

	require.NoError(t, repo.RecordCartPurchases(ctx, nil, userID, 86))
	require.NoError(t, repo.RecordCartPurchases(ctx, nil, userID, 86))

	var items []models.FrequentItem
	require.NoError(t, db.Order("product_name").Find(&items).Error)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, 2, item.PurchaseCount)
		assert.False(t, item.IsManual)
	}
}

func TestListFrequentFiltersManualAndSinglePurchases(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	rows := []models.FrequentItem{
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Milk", PurchaseCount: 5},
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Bread", PurchaseCount: 2},
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Once", PurchaseCount: 1},
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Starred", PurchaseCount: 999, IsManual: true},
		{ID: uuid.New(), UserID: userID, StoreNumber: 42, ProductName: "OtherStore", PurchaseCount: 9},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	got, err := repo.ListFrequent(ctx, userID, 86, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Milk", got[0].ProductName)
	assert.Equal(t, "Bread", got[1].ProductName)
}

func TestStarPromotesExistingCounter(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	existing := models.FrequentItem{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Milk", PurchaseCount: 4}
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, repo.Star(ctx, &models.FrequentItem{
		UserID: userID, StoreNumber: 86, ProductName: "Milk",
		Price: decimal.RequireFromString("3.49"),
	}))

	var got models.FrequentItem
	require.NoError(t, db.Where("product_name = ?", "Milk").First(&got).Error)
	assert.True(t, got.IsManual)
	assert.Equal(t, models.ManualFavoriteFloor, got.PurchaseCount)
	assert.Equal(t, existing.ID, got.ID)
}

func TestStarCreatesWhenMissing(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Star(ctx, &models.FrequentItem{
		UserID: userID, StoreNumber: 86, ProductName: "Eggs",
		Price: decimal.RequireFromString("4.99"),
	}))

	var got models.FrequentItem
	require.NoError(t, db.Where("product_name = ?", "Eggs").First(&got).Error)
	assert.True(t, got.IsManual)
	assert.Equal(t, models.ManualFavoriteFloor, got.PurchaseCount)
}

func TestUnstarPrunesThinHistory(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	// Starred with no organic history resets to 1 and is pruned.
	starred := models.FrequentItem{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Eggs", PurchaseCount: 999, IsManual: true}
	require.NoError(t, db.Create(&starred).Error)

	require.NoError(t, repo.Unstar(ctx, userID, 86, "Eggs"))

	var n int64
	require.NoError(t, db.Model(&models.FrequentItem{}).Where("product_name = ?", "Eggs").Count(&n).Error)
	assert.Zero(t, n)
}

func TestUnstarKeepsOrganicHistory(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	// Promoted counter keeps its organic count when the pin is removed.
	row := models.FrequentItem{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Milk", PurchaseCount: 4, IsManual: true}
	require.NoError(t, db.Create(&row).Error)

	require.NoError(t, repo.Unstar(ctx, userID, 86, "Milk"))

	var got models.FrequentItem
	require.NoError(t, db.Where("product_name = ?", "Milk").First(&got).Error)
	assert.False(t, got.IsManual)
	assert.Equal(t, 4, got.PurchaseCount)
}

func TestUnstarMissingReturnsNotFound(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)

	err := repo.Unstar(context.Background(), uuid.New(), 86, "Ghost")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDecrementForProductsNeverGoesNegative(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	rows := []models.FrequentItem{
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Milk", PurchaseCount: 3},
		{ID: uuid.New(), UserID: userID, StoreNumber: 86, ProductName: "Bread", PurchaseCount: 1},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	require.NoError(t, repo.DecrementForProducts(ctx, nil, userID, 86, []string{"Milk", "Bread"}))

	var milk models.FrequentItem
	require.NoError(t, db.Where("product_name = ?", "Milk").First(&milk).Error)
	assert.Equal(t, 2, milk.PurchaseCount)

	var n int64
	require.NoError(t, db.Model(&models.FrequentItem{}).Where("product_name = ?", "Bread").Count(&n).Error)
	assert.Zero(t, n, "counters that reach zero are removed")

	// Decrementing again must not resurrect or go negative.
	require.NoError(t, repo.DecrementForProducts(ctx, nil, userID, 86, []string{"Bread"}))
	require.NoError(t, db.Model(&models.FrequentItem{}).Where("product_name = ?", "Bread").Count(&n).Error)
	assert.Zero(t, n)
}
