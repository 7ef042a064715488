package saved

import (
	"time"

	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyCard is the listing projection shown in a saved list.
type PropertyCard struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Price         decimal.Decimal     `json:"price"`
	Currency      string              `json:"currency"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	PropertyType  enums.PropertyType  `json:"property_type"`
	OperationType enums.OperationType `json:"operation_type"`
	ListingStatus enums.ListingStatus `json:"listing_status"`
	Bedrooms      int                 `json:"bedrooms"`
	Bathrooms     float64             `json:"bathrooms"`
	CoverURL      *string             `json:"cover_url"`
}

// SavedItemDTO wraps the listing a user saved.
type SavedItemDTO struct {
	Property PropertyCard `json:"property"`
	SavedAt  time.Time    `json:"saved_at"`
}

// SavedPageDTO is a cursor-paginated saved list, newest first.
type SavedPageDTO struct {
	Items      []SavedItemDTO `json:"items"`
	Total      int64          `json:"total"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SavedIDsDTO lets clients mark saved listings without loading cards.
type SavedIDsDTO struct {
	PropertyIDs []uuid.UUID `json:"property_ids"`
	NextCursor  string      `json:"next_cursor,omitempty"`
}

// AddResult reports whether the save created a new entry.
type AddResult struct {
	PropertyID uuid.UUID `json:"property_id"`
	Created    bool      `json:"created"`
}

type savedRecord struct {
	SavedID       uuid.UUID
	SavedAt       time.Time
	PropertyID    uuid.UUID
	Title         string
	Price         decimal.Decimal
	Currency      string
	City          string
	State         string
	PropertyType  enums.PropertyType
	OperationType enums.OperationType
	ListingStatus enums.ListingStatus
	Bedrooms      int
	Bathrooms     float64
}

func (r savedRecord) toDTO(coverURL string) SavedItemDTO {
	card := PropertyCard{
		ID:            r.PropertyID,
		Title:         r.Title,
		Price:         r.Price,
		Currency:      r.Currency,
		City:          r.City,
		State:         r.State,
		PropertyType:  r.PropertyType,
		OperationType: r.OperationType,
		ListingStatus: r.ListingStatus,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
	}
	if coverURL != "" {
		card.CoverURL = &coverURL
	}
	return SavedItemDTO{Property: card, SavedAt: r.SavedAt}
}
