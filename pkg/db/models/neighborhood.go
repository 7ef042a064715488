package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Neighborhood is descriptive reference data; the application never writes it.
type Neighborhood struct {
	ID           int64               `gorm:"column:id;primaryKey;autoIncrement"`
	City         string              `gorm:"column:city;not null"`
	Name         string              `gorm:"column:name;not null"`
	Description  *string             `gorm:"column:description"`
	AveragePrice decimal.NullDecimal `gorm:"column:average_price;type:numeric(14,2)"`
	WalkScore    *int                `gorm:"column:walk_score"`
	SafetyScore  *int                `gorm:"column:safety_score"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Neighborhood) TableName() string { return "neighborhoods" }
