package catalog

import (
	"github.com/estatehub/estatehub-backend/pkg/db/models"
)

// FeatureDTO is an amenity tag as returned to clients.
type FeatureDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Icon     *string `json:"icon,omitempty"`
}

type NeighborhoodDTO struct {
	ID           int64   `json:"id"`
	City         string  `json:"city"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	AveragePrice *string `json:"average_price,omitempty"`
	WalkScore    *int    `json:"walk_score,omitempty"`
	SafetyScore  *int    `json:"safety_score,omitempty"`
}

// ToFeatureDTO converts a catalog row for responses.
func ToFeatureDTO(row models.PropertyFeature) FeatureDTO {
	return FeatureDTO{
		ID:       row.ID,
		Name:     row.Name,
		Category: row.Category,
		Icon:     row.Icon,
	}
}

func toNeighborhoodDTO(row models.Neighborhood) NeighborhoodDTO {
	dto := NeighborhoodDTO{
		ID:          row.ID,
		City:        row.City,
		Name:        row.Name,
		Description: row.Description,
		WalkScore:   row.WalkScore,
		SafetyScore: row.SafetyScore,
	}
	if row.AveragePrice.Valid {
		price := row.AveragePrice.Decimal.StringFixed(2)
		dto.AveragePrice = &price
	}
	return dto
}
