// Package dbtest opens throwaway sqlite databases carrying the production
// schema for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/migrate"
)

// Open returns a client over a fresh in-memory database. Connections are capped
// at one so concurrent transactions serialize the way row locks would.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:feedmill_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if err := migrate.ApplySQLite(context.Background(), sqlDB); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db.FromConn(conn)
}

// MustCreateAdmin inserts an admin user with a placeholder hash.
func MustCreateAdmin(t testing.TB, conn *gorm.DB) *models.AdminUser {
	t.Helper()
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("fm_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Mill Admin",
		Role:         enums.RoleAdmin,
		IsActive:     true,
	}
	if err := conn.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

// MustCreateCustomer inserts a customer.
func MustCreateCustomer(t testing.TB, conn *gorm.DB) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    "Green Acres",
		Phone:   "5550101",
		Address: "12 County Road",
	}
	if err := conn.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

// MustCreateFeed inserts a feed product priced at price and, when stock is not
// negative, a stock row holding that balance.
func MustCreateFeed(t testing.TB, conn *gorm.DB, name string, price string, stock int) *models.FeedProduct {
	t.Helper()
	feed := &models.FeedProduct{
		ID:           uuid.New(),
		Name:         name,
		AnimalType:   enums.AnimalTypePig,
		FeedType:     enums.FeedTypeGrower,
		Unit:         "kg",
		UnitSize:     50,
		PricePerUnit: decimal.RequireFromString(price),
	}
	if err := conn.Create(feed).Error; err != nil {
		t.Fatalf("create feed: %v", err)
	}
	if stock >= 0 {
		row := &models.FinishedFeedStock{ID: uuid.New(), FeedProductID: feed.ID, QuantityAvailable: stock}
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("create stock: %v", err)
		}
	}
	return feed
}

// Balance reads the stock balance directly, reporting -1 when no row exists.
func Balance(t testing.TB, conn *gorm.DB, feedID uuid.UUID) int {
	t.Helper()
	var rows []models.FinishedFeedStock
	if err := conn.Where("feed_product_id = ?", feedID).Limit(1).Find(&rows).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if len(rows) == 0 {
		return -1
	}
	return rows[0].QuantityAvailable
}

// Count returns the number of rows in model's table matching the optional condition.
func Count(t testing.TB, conn *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	q := conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
