package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT UNIQUE,
  is_anonymous INTEGER NOT NULL DEFAULT 0,
  store_number INTEGER NOT NULL DEFAULT 86,
  last_login_at DATETIME,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
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
);`, `
CREATE TABLE IF NOT EXISTS shopping_lists (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_number INTEGER NOT NULL,
  name TEXT NOT NULL,
  custom_name TEXT,
  is_auto_saved INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  last_updated DATETIME
);`, `
CREATE TABLE IF NOT EXISTS recipes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_number INTEGER NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  last_updated DATETIME
);`, `
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
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestGetOrCreateAnonymousIsIdempotent(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	first, err := repo.GetOrCreateAnonymous(ctx, id, 86)
	require.NoError(t, err)
	assert.True(t, first.IsAnonymous)
	assert.Equal(t, 86, first.StoreNumber)

	second, err := repo.GetOrCreateAnonymous(ctx, id, 99)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 86, second.StoreNumber)

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureAuthenticatedPromotesAnonymousRow(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetOrCreateAnonymous(ctx, id, 86)
	require.NoError(t, err)

	user, err := repo.EnsureAuthenticated(ctx, id, "shopper@example.com", 86)
	require.NoError(t, err)
	assert.False(t, user.IsAnonymous)
	require.NotNil(t, user.Email)
	assert.Equal(t, "shopper@example.com", *user.Email)
}

func TestMigrateAnonymousDataMergesCart(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	anonID := uuid.New()
	authID := uuid.New()
	_, err := repo.GetOrCreateAnonymous(ctx, anonID, 86)
	require.NoError(t, err)
	_, err = repo.EnsureAuthenticated(ctx, authID, "shopper@example.com", 86)
	require.NoError(t, err)

	insert := `INSERT INTO cart_items (user_id, store_number, product_name, price, quantity) VALUES (?, ?, ?, ?, ?)`
	require.NoError(t, db.Exec(insert, anonID, 86, "Milk", 3.49, 2).Error)
	require.NoError(t, db.Exec(insert, anonID, 86, "Eggs", 4.29, 1).Error)
	require.NoError(t, db.Exec(insert, authID, 86, "Milk", 3.49, 1).Error)
	require.NoError(t, db.Exec(`INSERT INTO shopping_lists (id, user_id, store_number, name) VALUES (?, ?, ?, ?)`,
		uuid.New(), anonID, 86, "Saturday list").Error)
	require.NoError(t, db.Exec(`INSERT INTO recipes (id, user_id, store_number, name) VALUES (?, ?, ?, ?)`,
		uuid.New(), anonID, 86, "Chili").Error)

	require.NoError(t, repo.MigrateAnonymousData(ctx, anonID, authID))

	var milkQty float64
	require.NoError(t, db.Raw(`SELECT quantity FROM cart_items WHERE user_id = ? AND product_name = 'Milk'`, authID).Scan(&milkQty).Error)
	assert.InDelta(t, 3, milkQty, 0.001)

	var counts struct {
		Cart    int64
		Lists   int64
		Recipes int64
	}
	require.NoError(t, db.Raw(`SELECT
  (SELECT COUNT(*) FROM cart_items WHERE user_id = ?) AS cart,
  (SELECT COUNT(*) FROM shopping_lists WHERE user_id = ?) AS lists,
  (SELECT COUNT(*) FROM recipes WHERE user_id = ?) AS recipes`,
		authID, authID, authID).Scan(&counts).Error)
	assert.EqualValues(t, 2, counts.Cart)
	assert.EqualValues(t, 1, counts.Lists)
	assert.EqualValues(t, 1, counts.Recipes)

	var orphans int64
	require.NoError(t, db.Table("cart_items").Where("user_id = ?", anonID).Count(&orphans).Error)
	assert.Zero(t, orphans)
	require.NoError(t, db.Table("users").Where("id = ?", anonID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestDeleteStaleAnonymousKeepsActiveUsers(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	staleEmpty := uuid.New()
	staleWithCart := uuid.New()
	fresh := uuid.New()
	old := time.Now().Add(-45 * 24 * time.Hour)

	insert := `INSERT INTO users (id, is_anonymous, store_number, created_at) VALUES (?, 1, 86, ?)`
	require.NoError(t, db.Exec(insert, staleEmpty, old).Error)
	require.NoError(t, db.Exec(insert, staleWithCart, old).Error)
	require.NoError(t, db.Exec(insert, fresh, time.Now()).Error)
	require.NoError(t, db.Exec(`INSERT INTO cart_items (user_id, store_number, product_name, price, quantity) VALUES (?, 86, 'Milk', 3.49, 1)`,
		staleWithCart).Error)

	deleted, err := repo.DeleteStaleAnonymous(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, db.Table("users").Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}

func TestClearStoreDataScopesToStore(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	cartInsert := `INSERT INTO cart_items (user_id, store_number, product_name, price, quantity) VALUES (?, ?, ?, ?, ?)`
	require.NoError(t, db.Exec(cartInsert, userID, 86, "Milk", 3.49, 1).Error)
	require.NoError(t, db.Exec(cartInsert, userID, 99, "Milk", 3.49, 1).Error)
	require.NoError(t, db.Exec(`INSERT INTO shopping_lists (id, user_id, store_number, name) VALUES (?, ?, 86, 'List')`,
		uuid.New(), userID).Error)
	require.NoError(t, db.Exec(`INSERT INTO recipes (id, user_id, store_number, name) VALUES (?, ?, 99, 'Chili')`,
		uuid.New(), userID).Error)

	require.NoError(t, repo.ClearStoreData(ctx, userID, 86))

	var counts struct {
		Cart86  int64
		Cart99  int64
		Lists86 int64
		Rec99   int64
	}
	require.NoError(t, db.Raw(`SELECT
  (SELECT COUNT(*) FROM cart_items WHERE user_id = ? AND store_number = 86) AS cart86,
  (SELECT COUNT(*) FROM cart_items WHERE user_id = ? AND store_number = 99) AS cart99,
  (SELECT COUNT(*) FROM shopping_lists WHERE user_id = ? AND store_number = 86) AS lists86,
  (SELECT COUNT(*) FROM recipes WHERE user_id = ? AND store_number = 99) AS rec99`,
		userID, userID, userID, userID).Scan(&counts).Error)
	assert.Zero(t, counts.Cart86)
	assert.EqualValues(t, 1, counts.Cart99)
	assert.Zero(t, counts.Lists86)
	assert.EqualValues(t, 1, counts.Rec99)
}
