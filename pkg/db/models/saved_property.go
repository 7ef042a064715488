package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedProperty links a user to a favorited listing.
type SavedProperty struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SavedProperty) TableName() string { return "saved_properties" }
