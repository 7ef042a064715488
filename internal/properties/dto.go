package properties

import (
	"time"

	"github.com/estatehub/estatehub-backend/internal/catalog"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput is the seller payload for a new listing. Coordinates are optional;
// when absent the address (or place_id) is geocoded.
type CreateInput struct {
	Title         string              `json:"title" validate:"required,max=200"`
	Description   *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price         decimal.Decimal     `json:"price"`
	Currency      string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	AddressLine   string              `json:"address_line" validate:"required,max=255"`
	City          string              `json:"city" validate:"required,max=120"`
	State         string              `json:"state" validate:"required,max=120"`
	Country       string              `json:"country" validate:"required,max=120"`
	ZipCode       string              `json:"zip_code" validate:"required,max=20"`
	PropertyType  enums.PropertyType  `json:"property_type" validate:"required"`
	OperationType enums.OperationType `json:"operation_type" validate:"required"`
	ListingStatus enums.ListingStatus `json:"listing_status,omitempty"`
	Bedrooms      int                 `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms     float64             `json:"bathrooms" validate:"gte=0,lte=100"`
	AreaM2        *float64            `json:"area_m2,omitempty" validate:"omitempty,gt=0"`
	YearBuilt     *int                `json:"year_built,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	Latitude      *float64            `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64            `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	PlaceID       string              `json:"place_id,omitempty" validate:"omitempty,max=300"`
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title         *string              `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal     `json:"price,omitempty"`
	Currency      *string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	AddressLine   *string              `json:"address_line,omitempty" validate:"omitempty,min=1,max=255"`
	City          *string              `json:"city,omitempty" validate:"omitempty,min=1,max=120"`
	State         *string              `json:"state,omitempty" validate:"omitempty,min=1,max=120"`
	Country       *string              `json:"country,omitempty" validate:"omitempty,min=1,max=120"`
	ZipCode       *string              `json:"zip_code,omitempty" validate:"omitempty,min=1,max=20"`
	PropertyType  *enums.PropertyType  `json:"property_type,omitempty"`
	OperationType *enums.OperationType `json:"operation_type,omitempty"`
	ListingStatus *enums.ListingStatus `json:"listing_status,omitempty"`
	Bedrooms      *int                 `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=100"`
	Bathrooms     *float64             `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=100"`
	AreaM2        *float64             `json:"area_m2,omitempty" validate:"omitempty,gt=0"`
	YearBuilt     *int                 `json:"year_built,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	Latitude      *float64             `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64             `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

func (in UpdateInput) touchesAddress() bool {
	return in.AddressLine != nil || in.City != nil || in.State != nil || in.Country != nil || in.ZipCode != nil
}

// ReplaceFeaturesInput is the full feature set of a listing.
type ReplaceFeaturesInput struct {
	FeatureIDs []int64 `json:"feature_ids" validate:"max=100,dive,gt=0"`
}

// ListFilters describe the browse endpoint knobs. Zero values are ignored.
type ListFilters struct {
	City          string
	PropertyType  *enums.PropertyType
	OperationType *enums.OperationType
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinBedrooms   *int
}

type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// MapInput centers a radius search. RadiusKm defaults to DefaultRadiusKm.
type MapInput struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

type SearchInput struct {
	Query         string
	City          string
	PropertyType  string
	OperationType string
	Limit         int
	Offset        int
}

// SummaryDTO is a listing card.
type SummaryDTO struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Price         decimal.Decimal     `json:"price"`
	Currency      string              `json:"currency"`
	AddressLine   string              `json:"address_line"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	Country       string              `json:"country"`
	ZipCode       string              `json:"zip_code"`
	PropertyType  enums.PropertyType  `json:"property_type"`
	OperationType enums.OperationType `json:"operation_type"`
	ListingStatus enums.ListingStatus `json:"listing_status"`
	Bedrooms      int                 `json:"bedrooms"`
	Bathrooms     float64             `json:"bathrooms"`
	AreaM2        *float64            `json:"area_m2,omitempty"`
	Latitude      *float64            `json:"latitude,omitempty"`
	Longitude     *float64            `json:"longitude,omitempty"`
	CoverURL      *string             `json:"cover_url"`
	CreatedAt     time.Time           `json:"created_at"`
}

type DetailDTO struct {
	SummaryDTO
	SellerID    uuid.UUID            `json:"seller_id"`
	Description *string              `json:"description,omitempty"`
	YearBuilt   *int                 `json:"year_built,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Images      []images.ImageDTO    `json:"images"`
	Features    []catalog.FeatureDTO `json:"features"`
}

type MapItemDTO struct {
	SummaryDTO
	DistanceKm float64 `json:"distance_km"`
}

type ListPage struct {
	Items      []SummaryDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type MapResult struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	RadiusKm  float64      `json:"radius_km"`
	Items     []MapItemDTO `json:"items"`
	Count     int          `json:"count"`
}

type SearchResult struct {
	Query string       `json:"query"`
	Items []SummaryDTO `json:"items"`
	Total int64        `json:"total"`
}

func toSummary(row models.Property, coverURL string) SummaryDTO {
	dto := SummaryDTO{
		ID:            row.ID,
		Title:         row.Title,
		Price:         row.Price,
		Currency:      row.Currency,
		AddressLine:   row.AddressLine,
		City:          row.City,
		State:         row.State,
		Country:       row.Country,
		ZipCode:       row.ZipCode,
		PropertyType:  row.PropertyType,
		OperationType: row.OperationType,
		ListingStatus: row.ListingStatus,
		Bedrooms:      row.Bedrooms,
		Bathrooms:     row.Bathrooms,
		AreaM2:        row.AreaM2,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		CreatedAt:     row.CreatedAt,
	}
	if coverURL != "" {
		dto.CoverURL = &coverURL
	}
	return dto
}
