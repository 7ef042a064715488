package properties

import (
	"context"
	"strings"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxMapCandidates bounds the bounding-box prefilter.
const maxMapCandidates = 1000

// Repository persists listings and their feature assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, property *models.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Property, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) ([]models.Property, error)
	WithinBox(ctx context.Context, box boundingBox, limit int) ([]models.Property, error)
	ListActivePage(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Property, error)
	FeaturesFor(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyFeature, error)
	ReplaceFeatures(ctx context.Context, propertyID uuid.UUID, featureIDs []int64) error
}

// ListQuery is a keyset page over (created_at DESC, id DESC).
type ListQuery struct {
	Filters    ListFilters
	SellerID   *uuid.UUID
	ActiveOnly bool
	Cursor     *pagination.Cursor
	Limit      int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var row models.Property
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDs returns the matching rows in no particular order.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Property
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the listing; images, feature assignments and saved entries cascade.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Property{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Property, error) {
	q := r.db.WithContext(ctx).Model(&models.Property{})
	if query.ActiveOnly {
		q = q.Where("listing_status = ?", enums.ListingStatusActive)
	}
	if query.SellerID != nil {
		q = q.Where("seller_id = ?", *query.SellerID)
	}
	q = applyFilters(q, query.Filters)
	if query.Cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Property
	err := q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(query.Limit)).
		Find(&rows).Error
	return rows, err
}

func applyFilters(q *gorm.DB, f ListFilters) *gorm.DB {
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if f.PropertyType != nil {
		q = q.Where("property_type = ?", *f.PropertyType)
	}
	if f.OperationType != nil {
		q = q.Where("operation_type = ?", *f.OperationType)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.MinBedrooms)
	}
	return q
}

// WithinBox returns active, geocoded listings inside the box. Callers apply the exact distance.
func (r *repository) WithinBox(ctx context.Context, box boundingBox, limit int) ([]models.Property, error) {
	if limit <= 0 || limit > maxMapCandidates {
		limit = maxMapCandidates
	}
	var rows []models.Property
	err := r.db.WithContext(ctx).
		Where("listing_status = ?", enums.ListingStatusActive).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListActivePage walks active listings in id order for re-indexing.
func (r *repository) ListActivePage(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Property, error) {
	q := r.db.WithContext(ctx).Where("listing_status = ?", enums.ListingStatusActive)
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	var rows []models.Property
	err := q.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *repository) FeaturesFor(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyFeature, error) {
	var rows []models.PropertyFeature
	err := r.db.WithContext(ctx).
		Table("property_features AS f").
		Select("f.*").
		Joins("JOIN property_feature_assignments a ON a.feature_id = f.id").
		Where("a.property_id = ?", propertyID).
		Order("f.category ASC, f.name ASC").
		Scan(&rows).Error
	return rows, err
}

// ReplaceFeatures swaps the whole assignment set. Run it inside a transaction.
func (r *repository) ReplaceFeatures(ctx context.Context, propertyID uuid.UUID, featureIDs []int64) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("property_id = ?", propertyID).Delete(&models.PropertyFeatureAssignment{}).Error; err != nil {
		return err
	}
	if len(featureIDs) == 0 {
		return nil
	}
	rows := make([]models.PropertyFeatureAssignment, 0, len(featureIDs))
	for _, id := range featureIDs {
		rows = append(rows, models.PropertyFeatureAssignment{PropertyID: propertyID, FeatureID: id})
	}
	return conn.Create(&rows).Error
}
