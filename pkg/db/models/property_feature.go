package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyFeature is an amenity tag from the catalog.
type PropertyFeature struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Category  string    `gorm:"column:category;not null"`
	Icon      *string   `gorm:"column:icon"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PropertyFeature) TableName() string { return "property_features" }

// PropertyFeatureAssignment links a property to a catalog feature.
type PropertyFeatureAssignment struct {
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;primaryKey"`
	FeatureID  int64     `gorm:"column:feature_id;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PropertyFeatureAssignment) TableName() string { return "property_feature_assignments" }
