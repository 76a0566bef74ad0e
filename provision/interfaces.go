// Package provision implements the multi-provider lifecycle orchestration:
// probing resource state, creating what is missing in dependency order, and
// tearing the same resources down best-effort.
package provision

import (
	"context"

	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/githost"
	"github.com/siteforge-io/siteforge/hosting"
)

// RepoHost defines the contract for the hosted repository provider.
type RepoHost interface {
	CurrentUser(ctx context.Context) (string, error)
	GetRepository(ctx context.Context, owner, name string) (*githost.Repository, error)
	CreateRepository(ctx context.Context, name string) (*githost.Repository, error)
	DeleteRepository(ctx context.Context, owner, name string) error
}

// SiteHost defines the contract for the hosting provider.
type SiteHost interface {
	GetSite(ctx context.Context, siteID string) (*hosting.Site, error)
	CreateSite(ctx context.Context, req hosting.CreateSiteRequest) (*hosting.Site, error)
	UpdateAllowedBranches(ctx context.Context, siteID string, branches []string) error
	SetEnvVar(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error
	DeleteSite(ctx context.Context, siteID string) error
}

// SiteLinkStore reads and writes the working tree's site link record.
type SiteLinkStore interface {
	Read(workingDir string) (string, error)
	Write(workingDir, siteID string) error
	Remove(workingDir string) error
}

// DatabaseProvider defines the contract for the database provider.
type DatabaseProvider interface {
	LinkedProjectRef(workingDir string) (string, error)
	Link(ctx context.Context, workingDir string) error
	Push(ctx context.Context, workingDir string) error
}

// WorkTree defines the contract for local git operations.
type WorkTree interface {
	Exists(dir string) bool
	Init(dir, defaultBranch string) error
	AddRemote(dir, name, url string) error
	CommitAll(dir, message string) (bool, error)
	CreateBranch(dir, name string) error
	Push(ctx context.Context, dir, remote string, branches []string) error
	Remove(dir string) error
}

// Scaffolder seeds new working trees with starter files.
type Scaffolder interface {
	WriteStarterFiles(dir string, identity domain.ProjectIdentity) error
}

// Reporter receives user-facing progress messages. The CLI renders them with
// colors; tests record them.
type Reporter interface {
	Infof(format string, a ...any)
	Createdf(format string, a ...any)
	Skippedf(format string, a ...any)
	Warnf(format string, a ...any)
}

// Recorder receives per-step outcomes for the run journal. Implementations
// must tolerate being called on a nil value.
type Recorder interface {
	Step(name, status, detail string)
}

// Step outcome statuses passed to the Recorder.
const (
	StatusCreated = "created"
	StatusSkipped = "skipped"
	StatusWarned  = "warned"
	StatusFailed  = "failed"
)

// Orchestration step names.
const (
	StepWorkingTree = "working-tree"
	StepRepository  = "repository"
	StepRemote      = "remote"
	StepBranch      = "staging-branch"
	StepSite        = "site"
	StepEnvVars     = "environment"
	StepMigration   = "migration"
	StepPublish     = "publish"
)
