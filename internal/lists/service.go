package lists

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/internal/cart"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultNameLayout is the generated name for lists created implicitly,
// e.g. by tagging before any auto-save has run today.
const defaultNameLayout = "Monday, January 2, 2006"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// purchaseDecrementer walks purchase counters back when a list is deleted.
type purchaseDecrementer interface {
	DecrementForProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int, productNames []string) error
}

// clock lets tests pin the current day.
type clock func() time.Time

// Service exposes saved-list operations for a resolved user and store.
type Service interface {
	AutoSave(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*AutoSaveResult, error)
	Tag(ctx context.Context, userID uuid.UUID, storeNumber int, customName string) (*ListDTO, error)
	Today(ctx context.Context, userID uuid.UUID, storeNumber int) (*ListDTO, error)
	SaveAsNew(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*ListDTO, error)
	List(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]ListDTO, error)
	Get(ctx context.Context, userID, listID uuid.UUID) (*ListDTO, error)
	Load(ctx context.Context, userID uuid.UUID, storeNumber int, listID uuid.UUID) (*LoadResult, error)
	Delete(ctx context.Context, userID uuid.UUID, listID uuid.UUID) error
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo     ListRepository
	CartRepo cart.CartRepository
	Frequent purchaseDecrementer
	Tx       txRunner
	Now      clock
}

type service struct {
	repo     ListRepository
	cartRepo cart.CartRepository
	frequent purchaseDecrementer
	tx       txRunner
	now      clock
}

// NewService builds a lists service backed by the provided stack.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("list repository required")
	}
	if p.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Frequent == nil {
		return nil, fmt.Errorf("purchase decrementer required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:     p.Repo,
		cartRepo: p.CartRepo,
		frequent: p.Frequent,
		tx:       p.Tx,
		now:      p.Now,
	}, nil
}

// AutoSave snapshots the current cart into today's list under the given
// name, creating the list on first save and replacing its items on
// later saves the same day. An empty cart is a no-op.
func (s *service) AutoSave(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*AutoSaveResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
	}

	cartItems, err := s.cartRepo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return &AutoSaveResult{Skipped: true}, nil
	}

	result := &AutoSaveResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindAutoSavedOnDay(ctx, userID, storeNumber, s.now())
		if err != nil {
			return err
		}
		if existing != nil {
			if err := repo.ReplaceItems(ctx, existing.ID, snapshotItems(existing.ID, cartItems)); err != nil {
				return err
			}
			if err := repo.RefreshHeader(ctx, existing.ID, name); err != nil {
				return err
			}
			result.ListID = &existing.ID
			result.Updated = true
			return nil
		}

		list := &models.ShoppingList{
			UserID:      userID,
			StoreNumber: storeNumber,
			Name:        name,
			IsAutoSaved: true,
		}
		if err := repo.Create(ctx, list); err != nil {
			return err
		}
		if err := repo.InsertItems(ctx, snapshotItems(list.ID, cartItems)); err != nil {
			return err
		}
		result.ListID = &list.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Tag puts a custom display name on today's auto-saved list, creating
// the list from the current cart when no auto-save has run yet today.
func (s *service) Tag(ctx context.Context, userID uuid.UUID, storeNumber int, customName string) (*ListDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	customName = strings.TrimSpace(customName)
	if customName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom name is required")
	}

	var tagged *models.ShoppingList
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		list, err := repo.FindAutoSavedOnDay(ctx, userID, storeNumber, s.now())
		if err != nil {
			return err
		}
		if list == nil {
			cartItems, err := s.cartRepo.WithTx(tx).ListByUser(ctx, userID, storeNumber)
			if err != nil {
				return err
			}
			list = &models.ShoppingList{
				UserID:      userID,
				StoreNumber: storeNumber,
				Name:        s.now().Format(defaultNameLayout),
				IsAutoSaved: true,
			}
			if err := repo.Create(ctx, list); err != nil {
				return err
			}
			if err := repo.InsertItems(ctx, snapshotItems(list.ID, cartItems)); err != nil {
				return err
			}
		}
		if err := repo.SetCustomName(ctx, list.ID, customName); err != nil {
			return err
		}
		list.CustomName = &customName
		tagged = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ItemsForList(ctx, tagged.ID)
	if err != nil {
		return nil, err
	}
	return toListDTO(tagged, items), nil
}

// Today returns today's auto-saved list, or nil when no auto-save has
// run yet.
func (s *service) Today(ctx context.Context, userID uuid.UUID, storeNumber int) (*ListDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	list, err := s.repo.FindAutoSavedOnDay(ctx, userID, storeNumber, s.now())
	if err != nil {
		return nil, err
	}
	if list == nil {
		// No auto-save yet today is a normal state, not an error.
		return nil, nil
	}
	items, err := s.repo.ItemsForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return toListDTO(list, items), nil
}

// SaveAsNew snapshots the current cart into a permanent named list.
// Unlike auto-save, an empty cart is rejected.
func (s *service) SaveAsNew(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*ListDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
	}

	cartItems, err := s.cartRepo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	list := &models.ShoppingList{
		UserID:      userID,
		StoreNumber: storeNumber,
		Name:        name,
		IsAutoSaved: false,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, list); err != nil {
			return err
		}
		return repo.InsertItems(ctx, snapshotItems(list.ID, cartItems))
	})
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ItemsForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return toListDTO(list, items), nil
}

// List returns the user's saved lists with items and totals.
func (s *service) List(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]ListDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	listRows, err := s.repo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(listRows))
	for _, l := range listRows {
		ids = append(ids, l.ID)
	}
	itemsByList, err := s.repo.ItemsForLists(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ListDTO, 0, len(listRows))
	for i := range listRows {
		out = append(out, *toListDTO(&listRows[i], itemsByList[listRows[i].ID]))
	}
	return out, nil
}

// Get returns one owned list with its items.
func (s *service) Get(ctx context.Context, userID, listID uuid.UUID) (*ListDTO, error) {
	if userID == uuid.Nil || listID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and list id are required")
	}
	list, err := s.repo.FindByIDForUser(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return toListDTO(list, items), nil
}

// Load replaces the current cart with a saved list's items. The list
// must belong to the user and match their active store.
func (s *service) Load(ctx context.Context, userID uuid.UUID, storeNumber int, listID uuid.UUID) (*LoadResult, error) {
	if userID == uuid.Nil || listID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and list id are required")
	}
	list, err := s.repo.FindByIDForUser(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	if list.StoreNumber != storeNumber {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list was saved for a different store").
			WithDetails(map[string]int{"list_store": list.StoreNumber, "active_store": storeNumber})
	}
	items, err := s.repo.ItemsForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCart := s.cartRepo.WithTx(tx)
		if err := txCart.Clear(ctx, userID, storeNumber); err != nil {
			return err
		}
		return txCart.InsertMany(ctx, thawItems(userID, storeNumber, items))
	})
	if err != nil {
		return nil, err
	}

	newCart, err := s.cartRepo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	return &LoadResult{
		ListName: displayName(list),
		Cart:     cart.ToCartDTO(newCart, storeNumber),
	}, nil
}

// Delete removes an owned list and walks back the purchase counters its
// products contributed, atomically.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, listID uuid.UUID) error {
	if userID == uuid.Nil || listID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and list id are required")
	}
	list, err := s.repo.FindByIDForUser(ctx, listID, userID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		names, err := repo.DistinctProductNames(ctx, list.ID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, list.ID); err != nil {
			return err
		}
		return s.frequent.DecrementForProducts(ctx, tx, userID, list.StoreNumber, names)
	})
}
