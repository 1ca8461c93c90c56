// Package postgres implements repository.Store on PostgreSQL.
//
// Schema changes are versioned SQL files applied by golang-migrate
// (migrations/ is embedded into the binary). Queries go through gorm.
// The schema comes only from those SQL files; gorm's AutoMigrate is not used.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sakif/kudos-board/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a gorm handle and implements repository.Store.
type DB struct {
	gdb *gorm.DB
}

// Open migrates the database at databaseURL to the latest schema, then
// connects gorm to it and checks the connection.
func Open(databaseURL string) (*DB, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(databaseURL), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	db := &DB{gdb: gdb}
	if err := db.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// newWithGorm wraps an existing gorm handle without migrating.
func newWithGorm(gdb *gorm.DB) *DB {
	return &DB{gdb: gdb}
}

// gormConfig routes gorm's own logging (slow queries, errors) into slog at
// WARN. A miss is normal for GetUser, so record-not-found is not logged.
//
// SkipDefaultTransaction: every write here is a single statement, so gorm's
// implicit BEGIN/COMMIT around Create/Update is turned off.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.gdb.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
