package models

import (
	"time"

	"github.com/google/uuid"
)

// FinishedFeedStock is the on-hand balance for one feed product. The balance
// never drops below zero.
type FinishedFeedStock struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeedProductID     uuid.UUID `gorm:"column:feed_product_id;type:uuid;not null;uniqueIndex"`
	QuantityAvailable int       `gorm:"column:quantity_available;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
