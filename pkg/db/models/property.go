package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatehub/estatehub-backend/pkg/enums"
)

// Property is a listing owned by a seller.
type Property struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID      uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Title         string              `gorm:"column:title;not null"`
	Description   *string             `gorm:"column:description"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(14,2);not null"`
	Currency      string              `gorm:"column:currency;not null"`
	AddressLine   string              `gorm:"column:address_line;not null"`
	City          string              `gorm:"column:city;not null"`
	State         string              `gorm:"column:state;not null"`
	Country       string              `gorm:"column:country;not null"`
	ZipCode       string              `gorm:"column:zip_code;not null"`
	PropertyType  enums.PropertyType  `gorm:"column:property_type;not null"`
	OperationType enums.OperationType `gorm:"column:operation_type;not null"`
	ListingStatus enums.ListingStatus `gorm:"column:listing_status;not null"`
	Bedrooms      int                 `gorm:"column:bedrooms;not null"`
	Bathrooms     float64             `gorm:"column:bathrooms;type:numeric(4,1);not null"`
	AreaM2        *float64            `gorm:"column:area_m2;type:numeric(10,2)"`
	YearBuilt     *int                `gorm:"column:year_built"`
	Latitude      *float64            `gorm:"column:latitude"`
	Longitude     *float64            `gorm:"column:longitude"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Property) TableName() string { return "properties" }

// HasLocation reports whether both coordinates are set.
func (p Property) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}
