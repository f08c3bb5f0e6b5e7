package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
	require.NoError(t, ValidateDir("sqlite"))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateFSChecksAnnotations(t *testing.T) {
	fsys := fstest.MapFS{
		"20260301090000_ok.sql":       {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
		"20260301090100_flipped.sql":  {Data: []byte("-- +goose Down\n-- +goose Up\n")},
		"20260301090200_unclosed.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n")},
	}
	err := ValidateFS(fsys)
	require.ErrorContains(t, err, "flipped")

	delete(fsys, "20260301090100_flipped.sql")
	require.ErrorContains(t, ValidateFS(fsys), "unbalanced")

	delete(fsys, "20260301090200_unclosed.sql")
	require.NoError(t, ValidateFS(fsys))

	fsys["20260301090000_dupe.sql"] = &fstest.MapFile{Data: []byte("-- +goose Up\n-- +goose Down\n")}
	require.ErrorContains(t, ValidateFS(fsys), "duplicate migration version")
}

func TestValidateEmbeddedSQLite(t *testing.T) {
	require.NoError(t, ValidateEmbeddedSQLite())
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Delivery Notes")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_delivery_notes.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestSQLiteMigratorLifecycle(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrator_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	ctx := context.Background()

	m, err := For(config.DBDriverSQLite, sqlDB, "ignored-for-sqlite", nil)
	require.NoError(t, err)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.True(t, pending)

	require.NoError(t, m.Up(ctx))
	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, st := range statuses {
		require.Equal(t, goose.StateApplied, st.State, st.Source.Path)
	}

	require.NoError(t, m.Down(ctx))
	require.False(t, conn.Migrator().HasTable("orders"))
	require.Error(t, m.Down(ctx), "nothing left to roll back")

	latest := statuses[len(statuses)-1].Source.Version
	require.NoError(t, m.To(ctx, latest))
	require.True(t, conn.Migrator().HasTable("orders"))
	require.NoError(t, m.To(ctx, latest), "already at target")
}

func TestPostgresMigratorRequiresDir(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:pgdir_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	_, err = Postgres(sqlDB, "", nil)
	require.Error(t, err)
	_, err = SQLite(nil, nil)
	require.Error(t, err)
}

func TestApplySQLiteCreatesSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ApplySQLite(ctx, sqlDB))
	// second run is a no-op
	require.NoError(t, ApplySQLite(ctx, sqlDB))

	for _, table := range []string{"feed_products", "finished_feed_stocks", "finished_feed_stock_transactions", "orders", "order_items", "customers", "admin_users"} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}
