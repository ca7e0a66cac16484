package lists

import (
	"context"
	"errors"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists saved shopping lists and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a lists repository on the shared gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ListRepository {
	return &Repository{db: tx}
}

// dayBounds returns the [start, end) window covering the calendar day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.Add(24 * time.Hour)
}

// FindAutoSavedOnDay returns the auto-saved list created on the given
// day, if one exists.
func (r *Repository) FindAutoSavedOnDay(ctx context.Context, userID uuid.UUID, storeNumber int, day time.Time) (*models.ShoppingList, error) {
	start, end := dayBounds(day)
	var list models.ShoppingList
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND is_auto_saved = ? AND created_at >= ? AND created_at < ?",
			userID, storeNumber, true, start, end).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find auto-saved list")
	}
	return &list, nil
}

// FindByIDForUser loads a list and enforces ownership.
func (r *Repository) FindByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load list")
	}
	return &list, nil
}

// Create inserts a new list header.
func (r *Repository) Create(ctx context.Context, list *models.ShoppingList) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create list")
	}
	return nil
}

// InsertItems bulk-inserts list items.
func (r *Repository) InsertItems(ctx context.Context, items []models.ShoppingListItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert list items")
	}
	return nil
}

// ReplaceItems swaps the full item set of a list.
func (r *Repository) ReplaceItems(ctx context.Context, listID uuid.UUID, items []models.ShoppingListItem) error {
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Delete(&models.ShoppingListItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear list items")
	}
	return r.InsertItems(ctx, items)
}

// SetCustomName tags a list with a user-chosen display name.
func (r *Repository) SetCustomName(ctx context.Context, listID uuid.UUID, customName string) error {
	res := r.db.WithContext(ctx).Model(&models.ShoppingList{}).
		Where("id = ?", listID).
		Updates(map[string]interface{}{"custom_name": customName, "last_updated": time.Now().UTC()})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "set custom name")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "list not found")
	}
	return nil
}

// RefreshHeader sets the generated name and bumps the last-updated
// timestamp after an auto-save replaces a list's items.
func (r *Repository) RefreshHeader(ctx context.Context, listID uuid.UUID, name string) error {
	err := r.db.WithContext(ctx).Model(&models.ShoppingList{}).
		Where("id = ?", listID).
		Updates(map[string]interface{}{"name": name, "last_updated": time.Now().UTC()}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refresh list header")
	}
	return nil
}

// ListByUser returns the user's lists, newest first. A non-nil store
// number narrows the result to that store.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]models.ShoppingList, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if storeNumber != nil {
		q = q.Where("store_number = ?", *storeNumber)
	}
	var out []models.ShoppingList
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list saved lists")
	}
	return out, nil
}

// ItemsForList returns a list's items in insertion order.
func (r *Repository) ItemsForList(ctx context.Context, listID uuid.UUID) ([]models.ShoppingListItem, error) {
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load list items")
	}
	return items, nil
}

// ItemsForLists returns the items of several lists keyed by list id.
func (r *Repository) ItemsForLists(ctx context.Context, listIDs []uuid.UUID) (map[uuid.UUID][]models.ShoppingListItem, error) {
	out := make(map[uuid.UUID][]models.ShoppingListItem, len(listIDs))
	if len(listIDs) == 0 {
		return out, nil
	}
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Where("list_id IN ?", listIDs).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load list items")
	}
	for _, item := range items {
		out[item.ListID] = append(out[item.ListID], item)
	}
	return out, nil
}

// DistinctProductNames returns the unique product names in a list.
func (r *Repository) DistinctProductNames(ctx context.Context, listID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.ShoppingListItem{}).
		Distinct("product_name").
		Where("list_id = ?", listID).
		Pluck("product_name", &names).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "collect product names")
	}
	return names, nil
}

// Delete removes a list and its items.
func (r *Repository) Delete(ctx context.Context, listID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Delete(&models.ShoppingListItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete list items")
	}
	err = r.db.WithContext(ctx).
		Where("id = ?", listID).
		Delete(&models.ShoppingList{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete list")
	}
	return nil
}
