package images

import (
	"context"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/auth"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const listOrder = "is_cover DESC, display_order ASC, created_at ASC, id ASC"

// PropertyRef is the part of a listing image calls need for ownership and visibility checks.
type PropertyRef struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	ListingStatus enums.ListingStatus
}

// VisibleTo is true for active listings, and for any listing its seller or an admin asks about.
func (p PropertyRef) VisibleTo(actor auth.Actor) bool {
	return p.ListingStatus == enums.ListingStatusActive || actor.CanManage(p.SellerID)
}

// ManagedRef is one stored reference visited by reconciliation.
type ManagedRef struct {
	ID               int64
	ImageURL         string
	StorageMissingAt *time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an image repository bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// PropertySummary returns gorm.ErrRecordNotFound when the property is unknown.
func (r *repository) PropertySummary(ctx context.Context, propertyID uuid.UUID) (*PropertyRef, error) {
	var ref PropertyRef
	err := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Select("id", "seller_id", "listing_status").
		Where("id = ?", propertyID).
		Take(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// LockProperty serializes image writers of one property for the rest of the transaction.
func (r *repository) LockProperty(ctx context.Context, propertyID uuid.UUID) error {
	return db.AdvisoryXactLock(r.db.WithContext(ctx), "property:"+propertyID.String())
}

func (r *repository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyImage, error) {
	var rows []models.PropertyImage
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order(listOrder).
		Find(&rows).Error
	return rows, err
}

// CoverRefs maps each property to the stored reference of its cover.
func (r *repository) CoverRefs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return out, nil
	}
	var rows []models.PropertyImage
	err := r.db.WithContext(ctx).
		Select("property_id", "image_url").
		Where("property_id IN ? AND is_cover = ?", propertyIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PropertyID] = row.ImageURL
	}
	return out, nil
}

// MaxDisplayOrder is 0 for a property without images.
func (r *repository) MaxDisplayOrder(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(display_order), 0) FROM property_images WHERE property_id = ?", propertyID).
		Scan(&maxOrder).Error
	return maxOrder, err
}

func (r *repository) HasCover(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("property_id = ? AND is_cover = ?", propertyID, true).
		Count(&count).Error
	return count > 0, err
}

// CreateBatch inserts rows in one statement and fills in their IDs.
func (r *repository) CreateBatch(ctx context.Context, rows []*models.PropertyImage) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.PropertyImage, error) {
	var row models.PropertyImage
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]models.PropertyImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.PropertyImage
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ClearCover unsets the cover on every image of the property except exceptID (0 clears all).
func (r *repository) ClearCover(ctx context.Context, propertyID uuid.UUID, exceptID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("property_id = ? AND is_cover = ? AND id <> ?", propertyID, true, exceptID).
		Updates(map[string]any{"is_cover": false, "updated_at": time.Now().UTC()}).Error
}

// UpdateFields applies the non-nil fields of update.
func (r *repository) UpdateFields(ctx context.Context, update ImageUpdate) error {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if update.DisplayOrder != nil {
		fields["display_order"] = *update.DisplayOrder
	}
	if update.IsCover != nil {
		fields["is_cover"] = *update.IsCover
	}
	res := r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("id = ?", update.ImageID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PropertyImage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PromoteLowestOrder makes the first remaining image (display_order, created_at, id) the cover.
// It reports false when the property has no images left.
func (r *repository) PromoteLowestOrder(ctx context.Context, propertyID uuid.UUID) (int64, bool, error) {
	var next models.PropertyImage
	err := r.db.WithContext(ctx).
		Select("id").
		Where("property_id = ?", propertyID).
		Order("display_order ASC, created_at ASC, id ASC").
		Limit(1).
		Find(&next).Error
	if err != nil {
		return 0, false, err
	}
	if next.ID == 0 {
		return 0, false, nil
	}
	err = r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("id = ?", next.ID).
		Updates(map[string]any{"is_cover": true, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return 0, false, err
	}
	return next.ID, true, nil
}

// ListManagedRefs pages through every stored reference in id order.
func (r *repository) ListManagedRefs(ctx context.Context, afterID int64, limit int) ([]ManagedRef, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []ManagedRef
	err := r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Select("id", "image_url", "storage_missing_at").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MarkStorageMissing flags rows whose object is gone. Rows already flagged keep their first timestamp.
func (r *repository) MarkStorageMissing(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("id IN ? AND storage_missing_at IS NULL", ids).
		Updates(map[string]any{"storage_missing_at": at.UTC(), "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// ClearStorageMissing removes the flag once an object reappears.
func (r *repository) ClearStorageMissing(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.PropertyImage{}).
		Where("id IN ? AND storage_missing_at IS NOT NULL", ids).
		Updates(map[string]any{"storage_missing_at": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
