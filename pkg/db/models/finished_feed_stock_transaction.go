package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// FinishedFeedStockTransaction is an append-only ledger row. Quantity is always
// a positive magnitude; Direction carries the sign.
type FinishedFeedStockTransaction struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeedProductID     uuid.UUID                  `gorm:"column:feed_product_id;type:uuid;not null"`
	Type              enums.StockTransactionType `gorm:"column:type;type:stock_transaction_type;not null"`
	Direction         enums.MovementDirection    `gorm:"column:direction;type:text;not null"`
	Quantity          int                        `gorm:"column:quantity;not null"`
	OrderID           *uuid.UUID                 `gorm:"column:order_id;type:uuid"`
	ProductionBatchID *uuid.UUID                 `gorm:"column:production_batch_id;type:uuid"`
	Note              *string                    `gorm:"column:note"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
