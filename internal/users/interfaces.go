package users

import (
	"context"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository exposes identity and store persistence.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetOrCreateAnonymous(ctx context.Context, id uuid.UUID, defaultStore int) (*models.User, error)
	EnsureAuthenticated(ctx context.Context, id uuid.UUID, email string, defaultStore int) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	GetStoreNumber(ctx context.Context, id uuid.UUID) (int, error)
	UpdateStoreNumber(ctx context.Context, id uuid.UUID, storeNumber int) error
	ClearStoreData(ctx context.Context, userID uuid.UUID, storeNumber int) error
	MigrateAnonymousData(ctx context.Context, anonymousID, authenticatedID uuid.UUID) error
	DeleteStaleAnonymous(ctx context.Context, cutoff time.Time) (int64, error)
	GetAnonymousStats(ctx context.Context) (AnonymousStats, error)
}
