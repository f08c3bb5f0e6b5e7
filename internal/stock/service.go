package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/metrics"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

// Service exposes stock administration for mill staff.
type Service interface {
	GetBalance(ctx context.Context, feedProductID uuid.UUID) (*BalanceDTO, error)
	RecordProduction(ctx context.Context, input RecordProductionInput) (*MovementResult, error)
	Adjust(ctx context.Context, input AdjustInput) (*MovementResult, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionList, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type feedLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.FeedProduct, error)
}

type service struct {
	tx      txRunner
	repo    *Repository
	ledger  *Ledger
	feeds   feedLookup
	metrics *metrics.StockMetrics
	logg    *logger.Logger
}

// NewService wires the stock service. metrics may be nil.
func NewService(tx txRunner, repo *Repository, ledger *Ledger, feeds feedLookup, m *metrics.StockMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if feeds == nil {
		return nil, fmt.Errorf("feed lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger, feeds: feeds, metrics: m, logg: logg}, nil
}

func (s *service) GetBalance(ctx context.Context, feedProductID uuid.UUID) (*BalanceDTO, error) {
	if err := s.ensureFeed(ctx, feedProductID); err != nil {
		return nil, err
	}
	qty, found, err := s.ledger.GetBalance(ctx, nil, feedProductID)
	if err != nil {
		return nil, err
	}
	return &BalanceDTO{FeedProductID: feedProductID, QuantityAvailable: qty, Tracked: found}, nil
}

func (s *service) RecordProduction(ctx context.Context, input RecordProductionInput) (*MovementResult, error) {
	if err := checkQuantity(input.Quantity); err != nil {
		return nil, err
	}
	if err := s.ensureFeed(ctx, input.FeedProductID); err != nil {
		return nil, err
	}
	return s.move(ctx, Entry{
		FeedProductID:     input.FeedProductID,
		Type:              enums.StockTransactionProductionIn,
		Direction:         enums.MovementIn,
		Quantity:          input.Quantity,
		ProductionBatchID: input.ProductionBatchID,
		Note:              input.Note,
	})
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*MovementResult, error) {
	if err := checkQuantity(input.Quantity); err != nil {
		return nil, err
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be IN or OUT")
	}
	if err := s.ensureFeed(ctx, input.FeedProductID); err != nil {
		return nil, err
	}
	return s.move(ctx, Entry{
		FeedProductID: input.FeedProductID,
		Type:          enums.StockTransactionAdjustment,
		Direction:     input.Direction,
		Quantity:      input.Quantity,
		Note:          input.Note,
	})
}

func (s *service) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionList, error) {
	if err := s.ensureFeed(ctx, input.FeedProductID); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListTransactions(ctx, listTransactionsParams{
		FeedProductID: input.FeedProductID,
		Limit:         pagination.LimitWithBuffer(input.Pagination.Limit),
		Cursor:        cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock transactions")
	}

	out := &TransactionList{}
	rows, out.NextCursor = pagination.Trim(rows, input.Pagination.Limit, func(row models.FinishedFeedStockTransaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	out.Items = make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out.Items = append(out.Items, newTransactionDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) move(ctx context.Context, entry Entry) (*MovementResult, error) {
	var result MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balance, err := s.ledger.ApplyMovement(ctx, tx, entry.FeedProductID, entry.Quantity, entry.Direction)
		if err != nil {
			return err
		}
		row, err := s.ledger.RecordTransaction(ctx, tx, entry)
		if err != nil {
			return err
		}
		result = MovementResult{Balance: balance, Transaction: newTransactionDTO(row)}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stock movement")
	}

	s.metrics.AddUnits(entry.Type.String(), entry.Direction.String(), entry.Quantity)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"feed_product_id": entry.FeedProductID.String(),
		"type":            entry.Type.String(),
		"direction":       entry.Direction.String(),
		"quantity":        entry.Quantity,
		"balance":         result.Balance,
	})
	s.logg.Info(logCtx, "stock movement recorded")
	return &result, nil
}

func (s *service) ensureFeed(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "feedProductId is required")
	}
	if _, err := s.feeds.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "feed product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feed product")
	}
	return nil
}
