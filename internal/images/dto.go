package images

import (
	"io"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Skip reasons reported for files dropped from an upload batch.
const (
	SkipReasonNotImage           = "not_an_image"
	SkipReasonTooLarge           = "file_too_large"
	SkipReasonEmpty              = "empty_file"
	SkipReasonUnreadable         = "unreadable_file"
	SkipReasonStorageWriteFailed = "storage_write_failed"
)

// MaxBatchUpdate bounds the number of entries in one update call.
const MaxBatchUpdate = 200

// UploadFile is one file part of an upload request.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadInput is the validated multipart request.
type UploadInput struct {
	PropertyID uuid.UUID
	// SellerID, when set, must be the caller.
	SellerID *uuid.UUID
	Files    []UploadFile
}

type SkippedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ImageDTO is the public shape of an image row.
type ImageDTO struct {
	ID               int64      `json:"id"`
	PropertyID       uuid.UUID  `json:"property_id"`
	ImageURL         string     `json:"image_url"`
	IsCover          bool       `json:"is_cover"`
	DisplayOrder     int        `json:"display_order"`
	FileSize         *int64     `json:"file_size,omitempty"`
	MimeType         *string    `json:"mime_type,omitempty"`
	OriginalFilename *string    `json:"original_filename,omitempty"`
	AltText          *string    `json:"alt_text,omitempty"`
	StorageMissingAt *time.Time `json:"storage_missing_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type UploadResult struct {
	Images     []ImageDTO    `json:"images"`
	Count      int           `json:"count"`
	UploadPath string        `json:"uploadPath"`
	Skipped    []SkippedFile `json:"skipped"`
}

type ListResult struct {
	PropertyID uuid.UUID  `json:"property_id"`
	Images     []ImageDTO `json:"images"`
	Count      int        `json:"count"`
}

// ImageUpdate is one entry of a batch update; nil fields are left alone.
type ImageUpdate struct {
	ImageID      int64 `json:"imageId" validate:"required,gt=0"`
	DisplayOrder *int  `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsCover      *bool `json:"is_cover,omitempty"`
}

func (u ImageUpdate) empty() bool {
	return u.DisplayOrder == nil && u.IsCover == nil
}

type UpdateInput struct {
	Images []ImageUpdate `json:"images" validate:"required,min=1,max=200,dive"`
}

type UpdateResult struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
}

type DeleteResult struct {
	Message   string `json:"message"`
	DeletedID int64  `json:"deleted_id"`
}

// toDTO copies a row, substituting the resolved URL.
func toDTO(row models.PropertyImage, resolvedURL string) ImageDTO {
	return ImageDTO{
		ID:               row.ID,
		PropertyID:       row.PropertyID,
		ImageURL:         resolvedURL,
		IsCover:          row.IsCover,
		DisplayOrder:     row.DisplayOrder,
		FileSize:         row.FileSize,
		MimeType:         row.MimeType,
		OriginalFilename: row.OriginalFilename,
		AltText:          row.AltText,
		StorageMissingAt: row.StorageMissingAt,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
