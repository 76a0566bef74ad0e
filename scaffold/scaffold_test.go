package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge-io/siteforge/domain"
)

func TestWriteStarterFiles(t *testing.T) {
	dir := t.TempDir()
	identity, err := domain.NewProjectIdentity("demo")
	require.NoError(t, err)

	require.NoError(t, NewService().WriteStarterFiles(dir, identity))

	for _, name := range []string{"index.html", "README.md", "netlify.toml", "siteforge.yaml", ".gitignore"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>demo</title>")
}

func TestWriteStarterFilesNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	identity, err := domain.NewProjectIdentity("demo")
	require.NoError(t, err)

	custom := "<html>customized</html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(custom), 0o644))

	require.NoError(t, NewService().WriteStarterFiles(dir, identity))

	body, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(body))
}

func TestInitialSchemaSQLIsIdempotent(t *testing.T) {
	identity, err := domain.NewProjectIdentity("demo")
	require.NoError(t, err)

	sql := InitialSchemaSQL(identity)
	assert.Contains(t, sql, "create table if not exists pages")
	assert.Contains(t, sql, "drop policy if exists")
	assert.Contains(t, sql, "enable row level security")
}
