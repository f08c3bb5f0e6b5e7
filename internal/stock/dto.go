package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

// RecordProductionInput adds freshly produced units.
type RecordProductionInput struct {
	FeedProductID     uuid.UUID
	Quantity          int
	ProductionBatchID *uuid.UUID
	Note              *string
}

// AdjustInput corrects the balance by hand, e.g. after a count or spoilage.
type AdjustInput struct {
	FeedProductID uuid.UUID
	Quantity      int
	Direction     enums.MovementDirection
	Note          *string
}

// ListTransactionsInput pages through a product's ledger.
type ListTransactionsInput struct {
	FeedProductID uuid.UUID
	Pagination    pagination.Params
}

// BalanceDTO reports the on-hand quantity. Tracked is false when the product
// has never had stock recorded.
type BalanceDTO struct {
	FeedProductID     uuid.UUID `json:"feedProductId"`
	QuantityAvailable int       `json:"quantityAvailable"`
	Tracked           bool      `json:"tracked"`
}

// TransactionDTO is one ledger row.
type TransactionDTO struct {
	ID                uuid.UUID                  `json:"id"`
	FeedProductID     uuid.UUID                  `json:"feedProductId"`
	Type              enums.StockTransactionType `json:"type"`
	Direction         enums.MovementDirection    `json:"direction"`
	Quantity          int                        `json:"quantity"`
	OrderID           *uuid.UUID                 `json:"orderId,omitempty"`
	ProductionBatchID *uuid.UUID                 `json:"productionBatchId,omitempty"`
	Note              *string                    `json:"note,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// MovementResult is the outcome of a manual stock write.
type MovementResult struct {
	Balance     int            `json:"quantityAvailable"`
	Transaction TransactionDTO `json:"transaction"`
}

// TransactionList is a page of ledger rows.
type TransactionList struct {
	Items      []TransactionDTO `json:"items"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

func newTransactionDTO(row *models.FinishedFeedStockTransaction) TransactionDTO {
	return TransactionDTO{
		ID:                row.ID,
		FeedProductID:     row.FeedProductID,
		Type:              row.Type,
		Direction:         row.Direction,
		Quantity:          row.Quantity,
		OrderID:           row.OrderID,
		ProductionBatchID: row.ProductionBatchID,
		Note:              row.Note,
		CreatedAt:         row.CreatedAt,
	}
}
