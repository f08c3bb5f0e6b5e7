package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

// Entry describes one ledger row to append.
type Entry struct {
	FeedProductID     uuid.UUID
	Type              enums.StockTransactionType
	Direction         enums.MovementDirection
	Quantity          int
	OrderID           *uuid.UUID
	ProductionBatchID *uuid.UUID
	Note              *string
}

// Ledger owns the finished feed balance. Every method that writes takes the
// caller's transaction so balance changes and their ledger rows commit
// together with whatever else the caller is doing.
type Ledger struct {
	repo *Repository
	now  func() time.Time
}

// NewLedger builds a ledger over repo.
func NewLedger(repo *Repository) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &Ledger{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

// GetBalance returns the on-hand quantity. found is false when the product has
// never had a stock row.
func (l *Ledger) GetBalance(ctx context.Context, tx *gorm.DB, feedProductID uuid.UUID) (qty int, found bool, err error) {
	row, err := l.repo.WithTx(tx).FindByProduct(ctx, feedProductID)
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock balance")
	}
	if row == nil {
		return 0, false, nil
	}
	return row.QuantityAvailable, true, nil
}

// ApplyMovement changes the balance by qty in direction dir and returns the
// resulting balance. An OUT movement that would take the balance below zero,
// including one against a product without a stock row, fails with
// NEGATIVE_STOCK and changes nothing.
func (l *Ledger) ApplyMovement(ctx context.Context, tx *gorm.DB, feedProductID uuid.UUID, qty int, dir enums.MovementDirection) (int, error) {
	if err := checkQuantity(qty); err != nil {
		return 0, err
	}
	repo := l.repo.WithTx(tx)
	now := l.now()

	switch dir {
	case enums.MovementIn:
		current, _, err := l.GetBalance(ctx, tx, feedProductID)
		if err != nil {
			return 0, err
		}
		if current > models.MaxQuantity-qty {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "stock balance would exceed the storable maximum").
				WithDetails(map[string]any{"feedProductId": feedProductID.String(), "available": current, "max": models.MaxQuantity})
		}
		if err := repo.Increment(ctx, feedProductID, qty, now); err != nil {
			if db.IsForeignKeyViolation(err) {
				return 0, pkgerrors.New(pkgerrors.CodeNotFound, "feed product not found")
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment stock")
		}
	case enums.MovementOut:
		ok, err := repo.Decrement(ctx, feedProductID, qty, now)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
		}
		if !ok {
			available, _, err := l.GetBalance(ctx, tx, feedProductID)
			if err != nil {
				return 0, err
			}
			return 0, pkgerrors.New(pkgerrors.CodeNegativeStock, "stock cannot go below zero").
				WithDetails(map[string]any{
					"feedProductId": feedProductID.String(),
					"requested":     qty,
					"available":     available,
				})
		}
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement direction")
	}

	balance, _, err := l.GetBalance(ctx, tx, feedProductID)
	return balance, err
}

// RecordTransaction appends a ledger row. It never touches the balance.
func (l *Ledger) RecordTransaction(ctx context.Context, tx *gorm.DB, entry Entry) (*models.FinishedFeedStockTransaction, error) {
	if entry.FeedProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedProductId is required")
	}
	if err := checkQuantity(entry.Quantity); err != nil {
		return nil, err
	}
	if !entry.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if entry.Direction == "" {
		implied, ok := entry.Type.Direction()
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustments need an explicit direction")
		}
		entry.Direction = implied
	}
	if !entry.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement direction")
	}

	row := &models.FinishedFeedStockTransaction{
		ID:                uuid.New(),
		FeedProductID:     entry.FeedProductID,
		Type:              entry.Type,
		Direction:         entry.Direction,
		Quantity:          entry.Quantity,
		OrderID:           entry.OrderID,
		ProductionBatchID: entry.ProductionBatchID,
		Note:              entry.Note,
		CreatedAt:         l.now(),
	}
	if err := l.repo.WithTx(tx).AppendTransaction(ctx, row); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feed product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append stock transaction")
	}
	return row, nil
}

func checkQuantity(qty int) error {
	switch {
	case qty <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	case qty > models.MaxQuantity:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity is too large").
			WithDetails(map[string]any{"max": models.MaxQuantity})
	}
	return nil
}
