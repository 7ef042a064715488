package images

import (
	"context"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists property image metadata.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	PropertySummary(ctx context.Context, propertyID uuid.UUID) (*PropertyRef, error)
	LockProperty(ctx context.Context, propertyID uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyImage, error)
	CoverRefs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error)
	MaxDisplayOrder(ctx context.Context, propertyID uuid.UUID) (int, error)
	HasCover(ctx context.Context, propertyID uuid.UUID) (bool, error)
	CreateBatch(ctx context.Context, rows []*models.PropertyImage) error
	FindByID(ctx context.Context, id int64) (*models.PropertyImage, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.PropertyImage, error)
	ClearCover(ctx context.Context, propertyID uuid.UUID, exceptID int64) error
	UpdateFields(ctx context.Context, update ImageUpdate) error
	Delete(ctx context.Context, id int64) error
	PromoteLowestOrder(ctx context.Context, propertyID uuid.UUID) (int64, bool, error)
	ListManagedRefs(ctx context.Context, afterID int64, limit int) ([]ManagedRef, error)
	MarkStorageMissing(ctx context.Context, ids []int64, at time.Time) (int64, error)
	ClearStorageMissing(ctx context.Context, ids []int64) (int64, error)
}
