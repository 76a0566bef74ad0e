// Package db provides the SQLite-backed run journal for siteforge.
//
// The journal is advisory: it records what each invocation did, but no
// lifecycle decision ever reads it. Resource state is always re-derived from
// the providers.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens (creating if needed) the journal database at the given path.
func InitDB(path string) (*gorm.DB, error) {
	slog.Debug("Initializing journal database", "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&RunModel{}, &StepModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	slog.Debug("Journal database initialized", "path", path)
	return db, nil
}

// gormLogLevel maps the application log level to a GORM log level. SQL
// statements only show up under debug logging.
func gormLogLevel() logger.LogLevel {
	ctx := slog.Default()
	switch {
	case ctx.Enabled(context.TODO(), slog.LevelDebug):
		return logger.Info
	case ctx.Enabled(context.TODO(), slog.LevelError):
		return logger.Error
	default:
		return logger.Silent
	}
}
