package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyImage stores one gallery entry. ImageURL holds the stored reference:
// an absolute URL, a blob:// key, or a root-relative path.
type PropertyImage struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID       uuid.UUID  `gorm:"column:property_id;type:uuid;not null"`
	ImageURL         string     `gorm:"column:image_url;not null"`
	IsCover          bool       `gorm:"column:is_cover;not null"`
	DisplayOrder     int        `gorm:"column:display_order;not null"`
	FileSize         *int64     `gorm:"column:file_size"`
	MimeType         *string    `gorm:"column:mime_type"`
	OriginalFilename *string    `gorm:"column:original_filename"`
	AltText          *string    `gorm:"column:alt_text"`
	StorageMissingAt *time.Time `gorm:"column:storage_missing_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (PropertyImage) TableName() string { return "property_images" }
