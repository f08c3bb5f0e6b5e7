package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

const DefaultDir = "pkg/migrate/migrations"

//go:embed sqlite/*.sql
var sqliteMigrations embed.FS

// Migrator applies one set of migrations to one database. Postgres runs take
// an advisory session lock so two api instances starting together do not race.
type Migrator struct {
	provider *goose.Provider
	logg     *logger.Logger
}

// For picks the migration source for the configured driver: the directory
// for postgres, the embedded schema for sqlite.
func For(driver string, db *sql.DB, dir string, logg *logger.Logger) (*Migrator, error) {
	if driver == config.DBDriverSQLite {
		return SQLite(db, logg)
	}
	return Postgres(db, dir, logg)
}

func Postgres(db *sql.DB, dir string, logg *logger.Logger) (*Migrator, error) {
	if dir == "" {
		return nil, errors.New("migrations dir is required")
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("postgres migration lock: %w", err)
	}
	return newMigrator(goose.DialectPostgres, db, os.DirFS(dir), logg, goose.WithSessionLocker(locker))
}

func SQLite(db *sql.DB, logg *logger.Logger) (*Migrator, error) {
	fsys, err := fs.Sub(sqliteMigrations, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("embedded sqlite migrations: %w", err)
	}
	return newMigrator(goose.DialectSQLite3, db, fsys, logg)
}

func newMigrator(dialect goose.Dialect, db *sql.DB, fsys fs.FS, logg *logger.Logger, opts ...goose.ProviderOption) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	provider, err := goose.NewProvider(dialect, db, fsys, opts...)
	if err != nil {
		return nil, fmt.Errorf("goose %s provider: %w", dialect, err)
	}
	return &Migrator{provider: provider, logg: logg}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	m.report(ctx, results)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if result != nil {
		m.report(ctx, []*goose.MigrationResult{result})
	}
	if errors.Is(err, goose.ErrNoNextVersion) {
		return errors.New("migrate down: nothing to roll back")
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// To moves the schema up or down until target is the current version.
func (m *Migrator) To(ctx context.Context, target int64) error {
	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = m.provider.UpTo(ctx, target)
	default:
		results, err = m.provider.DownTo(ctx, target)
	}
	m.report(ctx, results)
	if err != nil {
		return fmt.Errorf("migrate from %d to %d: %w", current, target, err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return m.provider.Status(ctx)
}

func (m *Migrator) Pending(ctx context.Context) (bool, error) {
	return m.provider.HasPending(ctx)
}

func (m *Migrator) report(ctx context.Context, results []*goose.MigrationResult) {
	if m.logg == nil {
		return
	}
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fields := m.logg.WithFields(ctx, map[string]any{
			"version":     r.Source.Version,
			"file":        r.Source.Path,
			"direction":   r.Direction,
			"duration_ms": r.Duration.Milliseconds(),
		})
		if r.Error != nil {
			m.logg.Error(fields, "migration failed", r.Error)
			continue
		}
		m.logg.Info(fields, "migration applied")
	}
}

// ApplySQLite brings a sqlite database up to the embedded schema. The sqlite
// mode and package tests use it.
func ApplySQLite(ctx context.Context, db *sql.DB) error {
	m, err := SQLite(db, nil)
	if err != nil {
		return err
	}
	return m.Up(ctx)
}
