package stock

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/pkg/db/dbtest"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/metrics"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

type serviceFixture struct {
	svc  Service
	conn *gorm.DB
	reg  *prometheus.Registry
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ledger, err := NewLedger(repo)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(client, repo, ledger, feeds.NewRepository(client.DB()), metrics.NewStockMetrics(reg), logg)
	require.NoError(t, err)
	return serviceFixture{svc: svc, conn: client.DB(), reg: reg}
}

func TestRecordProductionAddsStockAndLedgerRow(t *testing.T) {
	f := newServiceFixture(t)
	feed := dbtest.MustCreateFeed(t, f.conn, "Pig Grower", "100", -1)
	batch := uuid.New()

	res, err := f.svc.RecordProduction(context.Background(), RecordProductionInput{
		FeedProductID:     feed.ID,
		Quantity:          40,
		ProductionBatchID: &batch,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, res.Balance)
	assert.Equal(t, enums.StockTransactionProductionIn, res.Transaction.Type)
	assert.Equal(t, enums.MovementIn, res.Transaction.Direction)
	require.NotNil(t, res.Transaction.ProductionBatchID)
	assert.Equal(t, batch, *res.Transaction.ProductionBatchID)

	counter, err := testutil.GatherAndCount(f.reg, "feedmill_stock_units_moved_total")
	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestAdjustOutCannotOverdraw(t *testing.T) {
	f := newServiceFixture(t)
	feed := dbtest.MustCreateFeed(t, f.conn, "Pig Grower", "100", 3)
	note := "spoiled bags"

	_, err := f.svc.Adjust(context.Background(), AdjustInput{FeedProductID: feed.ID, Quantity: 5, Direction: enums.MovementOut, Note: &note})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNegativeStock, errCode(err))
	assert.Equal(t, 3, dbtest.Balance(t, f.conn, feed.ID))
	assert.Zero(t, dbtest.Count(t, f.conn, &models.FinishedFeedStockTransaction{}, ""))

	res, err := f.svc.Adjust(context.Background(), AdjustInput{FeedProductID: feed.ID, Quantity: 2, Direction: enums.MovementOut, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Balance)
	assert.Equal(t, enums.StockTransactionAdjustment, res.Transaction.Type)
	require.NotNil(t, res.Transaction.Note)
	assert.Equal(t, note, *res.Transaction.Note)
}

func TestAdjustValidation(t *testing.T) {
	f := newServiceFixture(t)
	feed := dbtest.MustCreateFeed(t, f.conn, "Pig Grower", "100", 3)
	ctx := context.Background()

	_, err := f.svc.Adjust(ctx, AdjustInput{FeedProductID: feed.ID, Quantity: 1})
	assert.Equal(t, pkgerrors.CodeValidation, errCode(err))

	_, err = f.svc.Adjust(ctx, AdjustInput{FeedProductID: feed.ID, Quantity: -1, Direction: enums.MovementIn})
	assert.Equal(t, pkgerrors.CodeValidation, errCode(err))

	_, err = f.svc.Adjust(ctx, AdjustInput{FeedProductID: uuid.New(), Quantity: 1, Direction: enums.MovementIn})
	assert.Equal(t, pkgerrors.CodeNotFound, errCode(err))

	_, err = f.svc.Adjust(ctx, AdjustInput{FeedProductID: feed.ID, Quantity: models.MaxQuantity + 1, Direction: enums.MovementIn})
	assert.Equal(t, pkgerrors.CodeValidation, errCode(err))

	_, err = f.svc.RecordProduction(ctx, RecordProductionInput{FeedProductID: feed.ID, Quantity: models.MaxQuantity + 1})
	assert.Equal(t, pkgerrors.CodeValidation, errCode(err))
	assert.EqualValues(t, 0, dbtest.Count(t, f.conn, &models.FinishedFeedStockTransaction{}, "feed_product_id = ?", feed.ID))
}

func TestGetBalance(t *testing.T) {
	f := newServiceFixture(t)
	feed := dbtest.MustCreateFeed(t, f.conn, "Pig Grower", "100", -1)

	bal, err := f.svc.GetBalance(context.Background(), feed.ID)
	require.NoError(t, err)
	assert.False(t, bal.Tracked)
	assert.Zero(t, bal.QuantityAvailable)

	_, err = f.svc.GetBalance(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, errCode(err))
}

func TestListTransactionsPagesNewestFirst(t *testing.T) {
	f := newServiceFixture(t)
	feed := dbtest.MustCreateFeed(t, f.conn, "Pig Grower", "100", 0)
	ctx := context.Background()

	for qty := 1; qty <= 5; qty++ {
		_, err := f.svc.RecordProduction(ctx, RecordProductionInput{FeedProductID: feed.ID, Quantity: qty})
		require.NoError(t, err)
	}

	first, err := f.svc.ListTransactions(ctx, ListTransactionsInput{FeedProductID: feed.ID, Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 5, first.Items[0].Quantity)
	assert.Equal(t, 4, first.Items[1].Quantity)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.ListTransactions(ctx, ListTransactionsInput{FeedProductID: feed.ID, Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, 3, second.Items[0].Quantity)
	assert.Equal(t, 2, second.Items[1].Quantity)

	third, err := f.svc.ListTransactions(ctx, ListTransactionsInput{FeedProductID: feed.ID, Pagination: pagination.Params{Limit: 2, Cursor: second.NextCursor}})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Equal(t, 1, third.Items[0].Quantity)
	assert.Empty(t, third.NextCursor)

	_, err = f.svc.ListTransactions(ctx, ListTransactionsInput{FeedProductID: feed.ID, Pagination: pagination.Params{Cursor: "%%%"}})
	assert.Equal(t, pkgerrors.CodeValidation, errCode(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
