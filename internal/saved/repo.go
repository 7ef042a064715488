package saved

import (
	"context"
	"strings"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates saved-property persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a saved-property repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the pair and ignores duplicates. It reports whether a row was written.
func (r *Repository) Add(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || propertyID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}
	res := r.db.WithContext(ctx).
		Exec(`INSERT INTO saved_properties (id, user_id, property_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, property_id) DO NOTHING`,
			uuid.New(), userID, propertyID, time.Now().UTC())
	return res.RowsAffected > 0, res.Error
}

// Remove deletes the pair if it exists.
func (r *Repository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.SavedProperty{}).
		Error
}

func (r *Repository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedProperty{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// List returns one buffered page of saved listings; callers trim with pagination.Trim.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]savedRecord, error) {
	selectColumns := []string{
		"sp.id AS saved_id",
		"sp.created_at AS saved_at",
		"p.id AS property_id",
		"p.title",
		"p.price",
		"p.currency",
		"p.city",
		"p.state",
		"p.property_type",
		"p.operation_type",
		"p.listing_status",
		"p.bedrooms",
		"p.bathrooms",
	}
	query := r.db.WithContext(ctx).
		Table("saved_properties sp").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN properties p ON p.id = sp.property_id").
		Where("sp.user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(sp.created_at < ?) OR (sp.created_at = ? AND sp.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []savedRecord
	err := query.Order("sp.created_at DESC").Order("sp.id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Scan(&records).Error
	return records, err
}

// ListIDs returns only the saved property IDs, paged like List.
func (r *Repository) ListIDs(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SavedProperty, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SavedProperty{}).
		Select("id", "created_at", "property_id").
		Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.SavedProperty
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}
