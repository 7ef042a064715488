package catalog

import (
	"context"
	"strings"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the feature catalog and neighborhood reference data.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListFeatures(ctx context.Context) ([]models.PropertyFeature, error) {
	var rows []models.PropertyFeature
	err := r.db.WithContext(ctx).
		Order("category ASC, name ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ListNeighborhoods matches city case-insensitively; an empty city returns all rows.
func (r *Repository) ListNeighborhoods(ctx context.Context, city string) ([]models.Neighborhood, error) {
	query := r.db.WithContext(ctx).Model(&models.Neighborhood{})
	if city = strings.TrimSpace(city); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	var rows []models.Neighborhood
	err := query.Order("city ASC, name ASC").Find(&rows).Error
	return rows, err
}
