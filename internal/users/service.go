package users

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StoreResponse reports the user's selected store.
type StoreResponse struct {
	StoreNumber int `json:"store_number"`
}

// Service manages the user's store selection and anonymous-population
// reporting.
type Service interface {
	GetStore(ctx context.Context, userID uuid.UUID) (*StoreResponse, error)
	UpdateStore(ctx context.Context, userID uuid.UUID, storeNumber int) (*StoreResponse, error)
	SwitchStoreAndClear(ctx context.Context, userID uuid.UUID, storeNumber int) (*StoreResponse, error)
	AnonymousStats(ctx context.Context) (AnonymousStats, error)
}

type service struct {
	repo UserRepository
	tx   txRunner
}

// NewService constructs the users service.
func NewService(repo UserRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetStore(ctx context.Context, userID uuid.UUID) (*StoreResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return &StoreResponse{StoreNumber: user.StoreNumber}, nil
}

func (s *service) UpdateStore(ctx context.Context, userID uuid.UUID, storeNumber int) (*StoreResponse, error) {
	if storeNumber <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store number must be positive")
	}
	if err := s.repo.UpdateStoreNumber(ctx, userID, storeNumber); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	return &StoreResponse{StoreNumber: storeNumber}, nil
}

// SwitchStoreAndClear wipes the target store's data for the user before
// switching, so a fresh store starts with an empty cart and history.
func (s *service) SwitchStoreAndClear(ctx context.Context, userID uuid.UUID, storeNumber int) (*StoreResponse, error) {
	if storeNumber <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store number must be positive")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearStoreData(ctx, userID, storeNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear store data")
		}
		if err := repo.UpdateStoreNumber(ctx, userID, storeNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "switch store")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StoreResponse{StoreNumber: storeNumber}, nil
}

func (s *service) AnonymousStats(ctx context.Context) (AnonymousStats, error) {
	stats, err := s.repo.GetAnonymousStats(ctx)
	if err != nil {
		return AnonymousStats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "anonymous stats")
	}
	return stats, nil
}
