// Package dbtest opens throwaway sqlite databases carrying the listing schema,
// for repository and service tests that should not need Postgres.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/enums"
)

// schema mirrors the goose migrations in the sqlite dialect.
var schema = []string{
	`CREATE TABLE properties (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		price NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		address_line TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		country TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		property_type TEXT NOT NULL,
		operation_type TEXT NOT NULL,
		listing_status TEXT NOT NULL DEFAULT 'draft',
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms REAL NOT NULL DEFAULT 0,
		area_m2 REAL,
		year_built INTEGER,
		latitude REAL,
		longitude REAL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE property_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		is_cover BOOLEAN NOT NULL DEFAULT 0,
		display_order INTEGER NOT NULL DEFAULT 0 CHECK (display_order >= 0),
		file_size INTEGER,
		mime_type TEXT,
		original_filename TEXT,
		alt_text TEXT,
		storage_missing_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX idx_property_images_property_id ON property_images (property_id)`,
	`CREATE UNIQUE INDEX uq_property_images_single_cover ON property_images (property_id) WHERE is_cover`,
	`CREATE TABLE property_features (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL DEFAULT 'general',
		icon TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE property_feature_assignments (
		property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		feature_id INTEGER NOT NULL REFERENCES property_features(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (property_id, feature_id)
	)`,
	`CREATE TABLE neighborhoods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		city TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		average_price NUMERIC,
		walk_score INTEGER,
		safety_score INTEGER,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE saved_properties (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, property_id)
	)`,
}

// Open returns an isolated in-memory database with foreign keys enforced.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// A single connection keeps the shared in-memory schema alive and avoids table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// PropertyOption tweaks a seeded property.
type PropertyOption func(*models.Property)

func WithStatus(status enums.ListingStatus) PropertyOption {
	return func(p *models.Property) { p.ListingStatus = status }
}

func WithCity(city string) PropertyOption {
	return func(p *models.Property) { p.City = city }
}

func WithLocation(lat, lng float64) PropertyOption {
	return func(p *models.Property) { p.Latitude, p.Longitude = &lat, &lng }
}

func WithPrice(price int64) PropertyOption {
	return func(p *models.Property) { p.Price = decimal.NewFromInt(price) }
}

func WithCreatedAt(at time.Time) PropertyOption {
	return func(p *models.Property) { p.CreatedAt = at }
}

// SeedProperty inserts an active listing owned by sellerID.
func SeedProperty(t testing.TB, conn *gorm.DB, sellerID uuid.UUID, opts ...PropertyOption) *models.Property {
	t.Helper()
	property := &models.Property{
		ID:            uuid.New(),
		SellerID:      sellerID,
		Title:         "Sunny two bedroom",
		Price:         decimal.NewFromInt(250000),
		Currency:      "USD",
		AddressLine:   "12 Harbor Lane",
		City:          "Lisbon",
		State:         "Lisboa",
		Country:       "PT",
		ZipCode:       "1100-001",
		PropertyType:  enums.PropertyTypeApartment,
		OperationType: enums.OperationTypeSale,
		ListingStatus: enums.ListingStatusActive,
		Bedrooms:      2,
		Bathrooms:     1,
	}
	for _, opt := range opts {
		opt(property)
	}
	if err := conn.Create(property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return property
}

// SeedImage inserts an image row directly, bypassing the service.
func SeedImage(t testing.TB, conn *gorm.DB, propertyID uuid.UUID, ref string, order int, cover bool) *models.PropertyImage {
	t.Helper()
	image := &models.PropertyImage{
		PropertyID:   propertyID,
		ImageURL:     ref,
		IsCover:      cover,
		DisplayOrder: order,
	}
	if err := conn.Create(image).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}
	return image
}
