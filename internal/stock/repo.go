package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

// Repository persists stock balances and the append-only movement ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction. A nil tx keeps
// the current handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByProduct returns the stock row for a product, or nil when none exists.
func (r *Repository) FindByProduct(ctx context.Context, feedProductID uuid.UUID) (*models.FinishedFeedStock, error) {
	var row models.FinishedFeedStock
	err := r.db.WithContext(ctx).Where("feed_product_id = ?", feedProductID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Decrement subtracts qty only when the balance covers it. It returns false
// when no row was changed, either because the balance is short or because the
// product has no stock row.
func (r *Repository) Decrement(ctx context.Context, feedProductID uuid.UUID, qty int, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FinishedFeedStock{}).
		Where("feed_product_id = ? AND quantity_available >= ?", feedProductID, qty).
		UpdateColumns(map[string]any{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"updated_at":         now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Increment adds qty to the balance, creating the stock row when missing.
func (r *Repository) Increment(ctx context.Context, feedProductID uuid.UUID, qty int, now time.Time) error {
	row := &models.FinishedFeedStock{
		ID:                uuid.New(),
		FeedProductID:     feedProductID,
		QuantityAvailable: qty,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "feed_product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity_available": gorm.Expr("finished_feed_stocks.quantity_available + excluded.quantity_available"),
			"updated_at":         now,
		}),
	}).Create(row).Error
}

// AppendTransaction inserts one ledger row.
func (r *Repository) AppendTransaction(ctx context.Context, entry *models.FinishedFeedStockTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

type listTransactionsParams struct {
	FeedProductID uuid.UUID
	Limit         int
	Cursor        *pagination.Cursor
}

// ListTransactions returns up to Limit ledger rows for a product, newest
// first. Callers pass a buffered limit to detect a following page.
func (r *Repository) ListTransactions(ctx context.Context, params listTransactionsParams) ([]models.FinishedFeedStockTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FinishedFeedStockTransaction{}).
		Where("feed_product_id = ?", params.FeedProductID)

	var rows []models.FinishedFeedStockTransaction
	if err := pagination.Keyset(query, params.Cursor).Limit(params.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
