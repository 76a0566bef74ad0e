package provision

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/siteforge-io/siteforge/domain"
)

// Snapshot holds the probe results for every resource of one project, plus
// the repository owner derived from the authenticated identity.
type Snapshot struct {
	Owner       string
	WorkingTree domain.ResourceState
	Repository  domain.ResourceState
	Site        domain.ResourceState
	Database    domain.ResourceState
}

// Prober re-derives the current state of every external resource from the
// authoritative provider (or a provider-written local link file). Nothing
// from a prior run's output is trusted, which is what makes re-invocation
// after partial failure safe.
type Prober struct {
	repos        RepoHost
	sites        SiteHost
	links        SiteLinkStore
	database     DatabaseProvider
	git          WorkTree
	workspaceDir string
}

func NewProber(repos RepoHost, sites SiteHost, links SiteLinkStore, database DatabaseProvider, git WorkTree, workspaceDir string) *Prober {
	return &Prober{
		repos:        repos,
		sites:        sites,
		links:        links,
		database:     database,
		git:          git,
		workspaceDir: workspaceDir,
	}
}

// WorkingTreeDir returns the working tree location for a project.
func (p *Prober) WorkingTreeDir(identity domain.ProjectIdentity) string {
	return filepath.Join(p.workspaceDir, identity.Name)
}

// ProbeWorkingTree reports whether the local working tree exists.
func (p *Prober) ProbeWorkingTree(identity domain.ProjectIdentity) domain.ResourceState {
	dir := p.WorkingTreeDir(identity)
	if p.git.Exists(dir) {
		return domain.Present(domain.ResourceWorkingTree, dir, identity.Name)
	}
	return domain.Absent(domain.ResourceWorkingTree)
}

// ProbeRepository looks up the hosted repository under the authenticated
// user. The owner is always derived from the identity call, never assumed.
func (p *Prober) ProbeRepository(ctx context.Context, identity domain.ProjectIdentity) (string, domain.ResourceState, error) {
	owner, err := p.repos.CurrentUser(ctx)
	if err != nil {
		return "", domain.ResourceState{}, err
	}

	repo, err := p.repos.GetRepository(ctx, owner, identity.Name)
	if domain.IsNotFound(err) {
		return owner, domain.Absent(domain.ResourceRepository), nil
	}
	if err != nil {
		return owner, domain.ResourceState{}, err
	}
	return owner, domain.Present(domain.ResourceRepository, repo.FullName, repo.Name), nil
}

// ProbeSite checks the locally cached site link record and, when one exists,
// fetches the site's id and name from the provider. A link record pointing
// at a site that no longer exists counts as Absent.
func (p *Prober) ProbeSite(ctx context.Context, workingDir string) (domain.ResourceState, error) {
	siteID, err := p.links.Read(workingDir)
	if domain.IsNotFound(err) {
		return domain.Absent(domain.ResourceSite), nil
	}
	if err != nil {
		return domain.ResourceState{}, err
	}

	site, err := p.sites.GetSite(ctx, siteID)
	if domain.IsNotFound(err) {
		slog.Warn("Site link record points at a missing site", "site_id", siteID)
		return domain.Absent(domain.ResourceSite), nil
	}
	if err != nil {
		return domain.ResourceState{}, err
	}
	return domain.Present(domain.ResourceSite, site.ID, site.Name), nil
}

// ProbeDatabase checks the local database link marker.
func (p *Prober) ProbeDatabase(workingDir string) (domain.ResourceState, error) {
	ref, err := p.database.LinkedProjectRef(workingDir)
	if domain.IsNotFound(err) {
		return domain.Absent(domain.ResourceDatabaseLink), nil
	}
	if err != nil {
		return domain.ResourceState{}, err
	}
	return domain.Present(domain.ResourceDatabaseLink, ref, ref), nil
}

// All probes every resource and returns the combined snapshot.
func (p *Prober) All(ctx context.Context, identity domain.ProjectIdentity) (*Snapshot, error) {
	slog.Info("Probing resource state", "project", identity.Name)

	snap := &Snapshot{}
	snap.WorkingTree = p.ProbeWorkingTree(identity)

	owner, repoState, err := p.ProbeRepository(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to probe repository: %w", err)
	}
	snap.Owner = owner
	snap.Repository = repoState

	workingDir := p.WorkingTreeDir(identity)
	snap.Site, err = p.ProbeSite(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to probe site: %w", err)
	}

	snap.Database, err = p.ProbeDatabase(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to probe database link: %w", err)
	}

	slog.Info("Probe complete",
		"working_tree", snap.WorkingTree.Exists,
		"repository", snap.Repository.Exists,
		"site", snap.Site.Exists,
		"database_link", snap.Database.Exists)
	return snap, nil
}
