package users

import (
	"context"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateAnonymous resolves an anonymous user by id, creating the row
// when it does not exist yet. The id is client-supplied so carts survive
// page reloads before sign-up.
func (r *Repository) GetOrCreateAnonymous(ctx context.Context, id uuid.UUID, defaultStore int) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_anonymous = ?", id, true).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		ID:          id,
		IsAnonymous: true,
		StoreNumber: defaultStore,
	}
	if err := r.db.WithContext(ctx).
		Exec(`INSERT INTO users (id, is_anonymous, store_number) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			id, true, defaultStore).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// EnsureAuthenticated upserts the local row for a provider-backed account.
// A row that previously existed as anonymous under the same id is promoted.
func (r *Repository) EnsureAuthenticated(ctx context.Context, id uuid.UUID, email string, defaultStore int) (*models.User, error) {
	if err := r.db.WithContext(ctx).
		Exec(`INSERT INTO users (id, email, is_anonymous, store_number)
VALUES (?, ?, false, ?)
ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, is_anonymous = false`,
			id, email, defaultStore).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// GetStoreNumber returns the user's selected store.
func (r *Repository) GetStoreNumber(ctx context.Context, id uuid.UUID) (int, error) {
	var store int
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Pluck("store_number", &store).Error
	if err != nil {
		return 0, err
	}
	return store, nil
}

// UpdateStoreNumber sets the user's selected store.
func (r *Repository) UpdateStoreNumber(ctx context.Context, id uuid.UUID, storeNumber int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("store_number", storeNumber).Error
}

// ClearStoreData removes every store-scoped row for the user: cart lines,
// frequent items, saved lists and recipes. Child rows cascade via FK.
func (r *Repository) ClearStoreData(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Exec(`DELETE FROM cart_items WHERE user_id = ? AND store_number = ?`, userID, storeNumber).Error; err != nil {
		return err
	}
	if err := conn.Exec(`DELETE FROM frequent_items WHERE user_id = ? AND store_number = ?`, userID, storeNumber).Error; err != nil {
		return err
	}
	if err := conn.Exec(`DELETE FROM shopping_lists WHERE user_id = ? AND store_number = ?`, userID, storeNumber).Error; err != nil {
		return err
	}
	return conn.Exec(`DELETE FROM recipes WHERE user_id = ? AND store_number = ?`, userID, storeNumber).Error
}

// MigrateAnonymousData moves an anonymous user's cart, lists and recipes to
// the authenticated account, merging cart quantities on collision, then
// removes the anonymous row. Callers run this inside a transaction.
func (r *Repository) MigrateAnonymousData(ctx context.Context, anonymousID, authenticatedID uuid.UUID) error {
	conn := r.db.WithContext(ctx)

	if err := conn.Exec(`INSERT INTO cart_items
(user_id, store_number, product_name, price, quantity, aisle, image_url, search_term, is_sold_by_weight, unit_price)
SELECT ?, store_number, product_name, price, quantity, aisle, image_url, search_term, is_sold_by_weight, unit_price
FROM cart_items
WHERE user_id = ?
ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
    quantity = cart_items.quantity + EXCLUDED.quantity`,
		authenticatedID, anonymousID).Error; err != nil {
		return err
	}

	if err := conn.Exec(`UPDATE shopping_lists SET user_id = ? WHERE user_id = ?`, authenticatedID, anonymousID).Error; err != nil {
		return err
	}
	if err := conn.Exec(`UPDATE recipes SET user_id = ? WHERE user_id = ?`, authenticatedID, anonymousID).Error; err != nil {
		return err
	}

	if err := conn.Exec(`DELETE FROM cart_items WHERE user_id = ?`, anonymousID).Error; err != nil {
		return err
	}
	return conn.Exec(`DELETE FROM users WHERE id = ?`, anonymousID).Error
}

// DeleteStaleAnonymous removes anonymous users created before the cutoff
// that have no cart, lists or recipes, returning how many were deleted.
func (r *Repository) DeleteStaleAnonymous(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM users
WHERE is_anonymous = true
  AND created_at < ?
  AND NOT EXISTS (SELECT 1 FROM cart_items c WHERE c.user_id = users.id)
  AND NOT EXISTS (SELECT 1 FROM shopping_lists l WHERE l.user_id = users.id)
  AND NOT EXISTS (SELECT 1 FROM recipes rc WHERE rc.user_id = users.id)`, cutoff)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AnonymousStats summarizes the anonymous user population.
type AnonymousStats struct {
	Total     int64 `json:"total_anonymous"`
	Active7d  int64 `json:"active_7d"`
	Active30d int64 `json:"active_30d"`
	Stale30d  int64 `json:"stale_30d"`
}

// GetAnonymousStats counts anonymous users by age bucket.
func (r *Repository) GetAnonymousStats(ctx context.Context) (AnonymousStats, error) {
	var stats AnonymousStats
	err := r.db.WithContext(ctx).Raw(`SELECT
    COUNT(*) AS total,
    COUNT(CASE WHEN created_at > NOW() - INTERVAL '7 days' THEN 1 END) AS active7d,
    COUNT(CASE WHEN created_at > NOW() - INTERVAL '30 days' THEN 1 END) AS active30d,
    COUNT(CASE WHEN created_at < NOW() - INTERVAL '30 days' THEN 1 END) AS stale30d
FROM users
WHERE is_anonymous = true`).Scan(&stats).Error
	if err != nil {
		return AnonymousStats{}, err
	}
	return stats, nil
}
