package db

import (
	"fmt"
	"strings"
	"time"

	"cityguide/internal/logging"
	"cityguide/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to DATABASE_URL. Postgres DSNs go to the postgres driver;
// "file:" URLs, ":memory:" and *.db paths open SQLite.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	if isSQLite(dsn) {
		gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// SQLite only supports one writer at a time.
		sqlDB.SetMaxOpenConns(1)
		if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		return gdb, nil
	}

	gdb, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return gdb, nil
}

// gormWriter sends gorm's slow query and error lines to the db logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	l := logging.Component("db")
	l.Warn().Msgf(format, args...)
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || dsn == ":memory:" || strings.HasSuffix(dsn, ".db")
}

// Migrate creates or updates the posts and engagement ledger tables.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.Post{},
		&models.PostView{},
		&models.HelpfulVote{},
	)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}
