package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// FeedProduct is a sellable finished feed SKU.
type FeedProduct struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	AnimalType   enums.AnimalType   `gorm:"column:animal_type;type:animal_type;not null"`
	FeedType     enums.FeedType     `gorm:"column:feed_type;type:feed_type;not null"`
	Unit         string             `gorm:"column:unit;not null"`
	UnitSize     int                `gorm:"column:unit_size;not null"`
	PricePerUnit decimal.Decimal    `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Stock        *FinishedFeedStock `gorm:"foreignKey:FeedProductID;references:ID"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
