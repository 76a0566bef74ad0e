package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/siteforge-io/siteforge/domain"
)

// MigrationsDir is where artifacts are written, relative to the working tree.
const MigrationsDir = "supabase/migrations"

// WriteMigration creates a new migration artifact named
// <timestamp>_<project>_<description>.sql. The timestamp has second
// resolution and the provider applies artifacts in name-sorted order, so a
// fresh name is always ordered after everything already applied. The file is
// immutable once written; idempotency comes from its SQL body, not from
// reuse. A name collision (two invocations within the same second) is
// rejected rather than silently overwritten.
func WriteMigration(workingDir string, identity domain.ProjectIdentity, description, sqlBody string, now time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.sql",
		now.UTC().Format("20060102150405"),
		identity.MigrationPrefix(),
		strings.ReplaceAll(slug.Make(description), "-", "_"),
	)

	dir := filepath.Join(workingDir, filepath.FromSlash(MigrationsDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration artifact %s already exists, rerun to get a fresh timestamp", name)
	}

	if err := os.WriteFile(path, []byte(sqlBody), 0o644); err != nil {
		return "", fmt.Errorf("failed to write migration artifact: %w", err)
	}

	slog.Info("Migration artifact written", "name", name)
	return name, nil
}
