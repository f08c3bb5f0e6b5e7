package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/internal/pricing"
	"github.com/angelmondragon/feedmill-backend/internal/stock"
	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/metrics"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

const cancellationNote = "order cancelled"

// Service defines order placement and lifecycle operations.
type Service interface {
	PreviewOrder(ctx context.Context, input PreviewInput) (*pricing.Preview, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	catalog *feeds.Repository
	ledger  StockLedger
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

// NewService builds the order service. metrics may be nil.
func NewService(repo Repository, tx txRunner, catalog *feeds.Repository, ledger StockLedger, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("feed catalog required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		catalog: catalog,
		ledger:  ledger,
		metrics: m,
		logg:    logg,
	}, nil
}

func (s *service) PreviewOrder(ctx context.Context, input PreviewInput) (*pricing.Preview, error) {
	return pricing.Price(ctx, s.catalog, pricing.Input{
		Items:         input.Items,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
	})
}

// PlaceOrder prices the request and, in a single transaction, writes the order
// and its items, takes every line out of stock and records the sale in the
// ledger. Any short line aborts the whole order.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if input.AdminUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid paymentMethod")
	}

	ctx = s.logg.WithCustomerID(s.logg.WithAdminID(ctx, input.AdminUserID.String()), input.CustomerID.String())
	start := time.Now()

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		preview, err := pricing.Price(ctx, s.catalog.WithTx(tx), pricing.Input{
			Items:         input.Items,
			DiscountType:  input.DiscountType,
			DiscountValue: input.DiscountValue,
		})
		if err != nil {
			return err
		}

		order, items := buildOrder(input, preview)
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}

		for _, item := range items {
			if _, err := s.ledger.ApplyMovement(ctx, tx, item.FeedProductID, item.Quantity, enums.MovementOut); err != nil {
				return insufficientStock(err, item)
			}
			if _, err := s.ledger.RecordTransaction(ctx, tx, stock.Entry{
				FeedProductID: item.FeedProductID,
				Type:          enums.StockTransactionSaleOut,
				Direction:     enums.MovementOut,
				Quantity:      item.Quantity,
				OrderID:       &order.ID,
			}); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	s.metrics.ObservePlacement(time.Since(start))
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
		}
		s.metrics.IncRejected(string(typed.Code()))
		if typed.Code() == pkgerrors.CodeDependency || typed.Code() == pkgerrors.CodeInternal {
			s.logg.Error(ctx, "order placement failed", err)
		} else {
			s.logg.Warn(s.logg.WithField(ctx, "code", typed.Code()), "order placement rejected")
		}
		return nil, typed
	}

	s.metrics.IncPlaced(input.PaymentMethod.String())
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order placed")
	return s.GetOrder(ctx, orderID)
}

// UpdateStatus applies a lifecycle transition. Moving into CANCELLED puts every
// line back into stock in the same transaction as the status write. CANCELLED
// is terminal; repeating it is a no-op.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid orderStatus")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := checkTransition(order.Status, input.Status); err != nil {
			return err
		}
		if order.Status == input.Status {
			return nil
		}

		ok, err := repo.UpdateStatus(ctx, order.ID, order.Status, input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if input.Status == enums.OrderStatusCancelled {
			if err := s.restock(ctx, tx, order); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if changed {
		s.metrics.IncStatusChange(input.Status.String())
		s.logg.Info(s.logg.WithField(ctx, "order_status", input.Status.String()), "order status updated")
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid orderStatus filter")
	}
	params := listOrdersParams{
		Limit:      pagination.LimitWithBuffer(input.Pagination.Limit),
		Status:     input.Status,
		CustomerID: input.CustomerID,
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	params.Cursor = cursor

	rows, err := s.repo.ListOrders(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &OrderList{}
	rows, list.NextCursor = pagination.Trim(rows, input.Pagination.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	list.Orders = make([]OrderDTO, 0, len(rows))
	for i := range rows {
		list.Orders = append(list.Orders, NewOrderDTO(&rows[i]))
	}
	return list, nil
}

func (s *service) restock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	note := cancellationNote
	for _, item := range order.Items {
		if _, err := s.ledger.ApplyMovement(ctx, tx, item.FeedProductID, item.Quantity, enums.MovementIn); err != nil {
			return err
		}
		if _, err := s.ledger.RecordTransaction(ctx, tx, stock.Entry{
			FeedProductID: item.FeedProductID,
			Type:          enums.StockTransactionAdjustment,
			Direction:     enums.MovementIn,
			Quantity:      item.Quantity,
			OrderID:       &order.ID,
			Note:          &note,
		}); err != nil {
			return err
		}
	}
	return nil
}

func buildOrder(input PlaceOrderInput, preview *pricing.Preview) (*models.Order, []models.OrderItem) {
	now := nowUTC()
	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		AdminUserID:   input.AdminUserID,
		PaymentMethod: input.PaymentMethod,
		DiscountType:  preview.DiscountType,
		DiscountValue: preview.DiscountValue,
		TotalAmount:   preview.TotalAmount,
		FinalAmount:   preview.FinalAmount,
		DeliveryDate:  input.DeliveryDate,
		Status:        enums.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := make([]models.OrderItem, len(preview.Items))
	for i, line := range preview.Items {
		items[i] = models.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			FeedProductID: line.FeedProductID,
			Quantity:      line.Quantity,
			PricePerUnit:  line.PricePerUnit,
			Subtotal:      line.Subtotal,
			CreatedAt:     now,
		}
	}
	return order, items
}

// insufficientStock turns a ledger rejection for one line into the order level
// error naming the product that ran short.
func insufficientStock(err error, item models.OrderItem) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNegativeStock {
		return err
	}
	details := map[string]any{
		"feedProductId": item.FeedProductID.String(),
		"requested":     item.Quantity,
	}
	if ledgerDetails, ok := typed.Details().(map[string]any); ok {
		if available, ok := ledgerDetails["available"]; ok {
			details["available"] = available
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, err, "insufficient stock").WithDetails(details)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
