package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/internal/stock"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params listOrdersParams) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

// StockLedger moves finished feed balances inside the caller's transaction.
type StockLedger interface {
	ApplyMovement(ctx context.Context, tx *gorm.DB, feedProductID uuid.UUID, qty int, dir enums.MovementDirection) (int, error)
	RecordTransaction(ctx context.Context, tx *gorm.DB, entry stock.Entry) (*models.FinishedFeedStockTransaction, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
