// Package app provides the main application context for siteforge, wiring
// configuration, provider clients and the run journal.
package app

import (
	"log/slog"

	"github.com/siteforge-io/siteforge/config"
	supadb "github.com/siteforge-io/siteforge/database"
	"github.com/siteforge-io/siteforge/db"
	"github.com/siteforge-io/siteforge/githost"
	"github.com/siteforge-io/siteforge/gitrepo"
	"github.com/siteforge-io/siteforge/hosting"
	"github.com/siteforge-io/siteforge/provision"
	"github.com/siteforge-io/siteforge/scaffold"
)

var (
	cfg     *config.Config
	journal *db.Journal
	deps    provision.Deps
)

// InitializeWithConfig builds every provider collaborator from the explicit
// configuration object. No component reads the process environment on its
// own.
func InitializeWithConfig(c *config.Config) error {
	cfg = c

	// The journal is advisory; failing to open it must not block the run.
	database, err := db.InitDB(c.DatabasePath)
	if err != nil {
		slog.Warn("Run journal unavailable", "error", err)
		journal = nil
	} else {
		journal = db.NewJournal(database)
	}

	deps = provision.Deps{
		Repos:    githost.NewClient(c.GitHubToken),
		Sites:    hosting.NewClient(c.NetlifyAuthToken, c.NetlifyAccountID),
		Links:    hosting.StateFile{},
		Database: supadb.NewService(c.SupabaseProjectID, c.SupabaseDBPassword, c.SupabaseAccessToken),
		Git:      gitrepo.NewService(c.GitHubToken, c.GitAuthorName, c.GitAuthorEmail),
		Scaffold: scaffold.NewService(),
	}
	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetJournal returns the run journal; may be nil when unavailable.
func GetJournal() *db.Journal {
	return journal
}

// NewOrchestrator builds the creation-path orchestrator.
func NewOrchestrator(reporter provision.Reporter, recorder provision.Recorder) *provision.Orchestrator {
	return provision.NewOrchestrator(cfg, deps, reporter, recorder)
}

// NewTeardown builds the deletion-path orchestrator.
func NewTeardown(reporter provision.Reporter, recorder provision.Recorder) *provision.Teardown {
	return provision.NewTeardown(cfg, deps, reporter, recorder)
}
