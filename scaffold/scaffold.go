// Package scaffold seeds a freshly initialized working tree with enough
// starter files to commit and deploy.
package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/siteforge-io/siteforge/domain"
)

// Service writes starter files into new working trees.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// WriteStarterFiles writes the initial project files. Existing files are
// never overwritten, so re-running against a partially created tree is safe.
func (s *Service) WriteStarterFiles(dir string, identity domain.ProjectIdentity) error {
	files := map[string]string{
		"index.html":     indexHTML(identity.Name),
		"README.md":      readme(identity.Name),
		"netlify.toml":   netlifyTOML,
		"siteforge.yaml": manifestYAML,
		".gitignore":     gitignore,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			slog.Debug("Starter file already exists, skipping", "file", name)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// InitialSchemaSQL returns the idempotent SQL body of the first migration.
func InitialSchemaSQL(identity domain.ProjectIdentity) string {
	return fmt.Sprintf(`-- Initial schema for %s
create table if not exists pages (
    id bigint generated by default as identity primary key,
    slug text not null unique,
    title text not null,
    body text not null default '',
    created_at timestamptz not null default now()
);

alter table pages enable row level security;

drop policy if exists "pages are readable by everyone" on pages;
create policy "pages are readable by everyone" on pages
    for select using (true);
`, identity.Name)
}

func indexHTML(name string) string {
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s</title>
</head>
<body>
  <h1>%s</h1>
  <p>Provisioned by siteforge.</p>
</body>
</html>
`, name, name)
}

func readme(name string) string {
	return fmt.Sprintf(`# %s

Project skeleton provisioned by siteforge.
`, name)
}

const netlifyTOML = `[build]
  publish = "."
`

const manifestYAML = `# siteforge project manifest
default_branch: main
staging_branch: develop
site_prefix: site
`

const gitignore = `.netlify/
supabase/.temp/
.env
`
