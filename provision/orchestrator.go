package provision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/githost"
	"github.com/siteforge-io/siteforge/hosting"
	"github.com/siteforge-io/siteforge/scaffold"
)

// Deps bundles the provider collaborators of the orchestrator.
type Deps struct {
	Repos    RepoHost
	Sites    SiteHost
	Links    SiteLinkStore
	Database DatabaseProvider
	Git      WorkTree
	Scaffold Scaffolder
}

// Result summarizes one successful provisioning run.
type Result struct {
	Owner        string
	WorkingDir   string
	RepoFullName string
	SiteID       string
	SiteName     string
	Branches     []string
	Migration    string
	Committed    bool
}

// Orchestrator performs the creation path. For every resource it decides
// create-vs-skip from the probe snapshot, runs creations in fixed dependency
// order, and passes identifiers forward explicitly. The first failed step is
// fatal for the invocation; the next invocation's probe sees the partial
// state and resumes, which is what makes the tool idempotent under rerun.
type Orchestrator struct {
	cfg      *config.Config
	prober   *Prober
	deps     Deps
	reporter Reporter
	recorder Recorder
	now      func() time.Time
}

func NewOrchestrator(cfg *config.Config, deps Deps, reporter Reporter, recorder Recorder) *Orchestrator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Orchestrator{
		cfg:      cfg,
		prober:   NewProber(deps.Repos, deps.Sites, deps.Links, deps.Database, deps.Git, cfg.WorkspaceDir),
		deps:     deps,
		reporter: reporter,
		recorder: recorder,
		now:      time.Now,
	}
}

// Probe returns the current state of every resource.
func (o *Orchestrator) Probe(ctx context.Context, identity domain.ProjectIdentity) (*Snapshot, error) {
	return o.prober.All(ctx, identity)
}

// Provision runs the creation path against a probe snapshot. Order is fixed:
// working tree, hosted repository, staging branch, hosting site, environment
// configuration, migration, publish. A failure anywhere stops the chain.
func (o *Orchestrator) Provision(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot) (*Result, error) {
	workingDir := o.prober.WorkingTreeDir(identity)
	result := &Result{Owner: snap.Owner, WorkingDir: workingDir}

	if err := o.ensureWorkingTree(identity, snap, workingDir); err != nil {
		return nil, err
	}

	manifest, err := config.LoadManifest(workingDir)
	if err != nil {
		return nil, err
	}
	result.Branches = manifest.Branches()

	repo, err := o.ensureRepository(ctx, identity, snap)
	if err != nil {
		return nil, err
	}
	result.RepoFullName = repo.FullName

	if err := o.deps.Git.AddRemote(workingDir, "origin", repo.CloneURL); err != nil {
		o.recorder.Step(StepRemote, StatusFailed, err.Error())
		return nil, &domain.MutationError{Step: StepRemote, Resource: domain.ResourceWorkingTree, Err: err}
	}

	if err := o.ensureStagingBranch(workingDir, manifest.StagingBranch); err != nil {
		return nil, err
	}

	site, err := o.ensureSite(ctx, identity, snap, workingDir, manifest)
	if err != nil {
		return nil, err
	}
	result.SiteID = site.ID
	result.SiteName = site.Name

	envConfigurator := NewEnvConfigurator(o.deps.Sites, o.cfg, o.reporter, o.recorder)
	if err := envConfigurator.Apply(ctx, site.ID); err != nil {
		return nil, err
	}

	applier := NewMigrationApplier(o.deps.Database, o.reporter, o.recorder, o.now)
	migration, err := applier.Apply(ctx, workingDir, identity, "initial schema", scaffold.InitialSchemaSQL(identity), snap)
	if err != nil {
		return nil, err
	}
	result.Migration = migration

	publisher := NewPublisher(o.deps.Git, o.reporter, o.recorder)
	committed, err := publisher.Publish(ctx, workingDir, "Provision web project skeleton", result.Branches)
	if err != nil {
		return nil, err
	}
	result.Committed = committed

	slog.Info("Provisioning complete",
		"project", identity.Name,
		"repository", result.RepoFullName,
		"site_id", result.SiteID)
	return result, nil
}

// ensureWorkingTree creates and seeds the local working tree when absent.
// The initial commit happens here so that branch creation has a HEAD to
// point at.
func (o *Orchestrator) ensureWorkingTree(identity domain.ProjectIdentity, snap *Snapshot, workingDir string) error {
	if snap.WorkingTree.Exists {
		o.reporter.Skippedf("Working tree %s already exists", workingDir)
		o.recorder.Step(StepWorkingTree, StatusSkipped, workingDir)
		return nil
	}

	fail := func(err error) error {
		o.recorder.Step(StepWorkingTree, StatusFailed, err.Error())
		return &domain.MutationError{Step: StepWorkingTree, Resource: domain.ResourceWorkingTree, Err: err}
	}

	manifest := config.DefaultManifest()
	if err := o.deps.Git.Init(workingDir, manifest.DefaultBranch); err != nil {
		return fail(err)
	}
	if err := o.deps.Scaffold.WriteStarterFiles(workingDir, identity); err != nil {
		return fail(err)
	}
	if _, err := o.deps.Git.CommitAll(workingDir, "Initial commit"); err != nil {
		return fail(err)
	}

	snap.WorkingTree = domain.Present(domain.ResourceWorkingTree, workingDir, identity.Name)
	o.reporter.Createdf("Working tree created at %s", workingDir)
	o.recorder.Step(StepWorkingTree, StatusCreated, workingDir)
	return nil
}

// ensureRepository creates the private hosted repository when absent. The
// existing identifier from the probe is reused unchanged when present.
func (o *Orchestrator) ensureRepository(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot) (*githost.Repository, error) {
	if snap.Repository.Exists {
		o.reporter.Skippedf("Repository %s already exists", snap.Repository.ID)
		o.recorder.Step(StepRepository, StatusSkipped, snap.Repository.ID)
		repo, err := o.deps.Repos.GetRepository(ctx, snap.Owner, identity.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch existing repository: %w", err)
		}
		return repo, nil
	}

	repo, err := o.deps.Repos.CreateRepository(ctx, identity.Name)
	if err != nil {
		o.recorder.Step(StepRepository, StatusFailed, err.Error())
		return nil, &domain.MutationError{
			Step:     StepRepository,
			Resource: domain.ResourceRepository,
			Err:      err,
			Hint:     "check that GITHUB_TOKEN is valid and has the repo scope",
		}
	}

	snap.Repository = domain.Present(domain.ResourceRepository, repo.FullName, repo.Name)
	o.reporter.Createdf("Repository %s created", repo.FullName)
	o.recorder.Step(StepRepository, StatusCreated, repo.FullName)
	return repo, nil
}

// ensureStagingBranch points the staging branch at the current HEAD. Branch
// creation is locally idempotent, so no separate probe exists for it.
func (o *Orchestrator) ensureStagingBranch(workingDir, branch string) error {
	if err := o.deps.Git.CreateBranch(workingDir, branch); err != nil {
		o.recorder.Step(StepBranch, StatusFailed, err.Error())
		return &domain.MutationError{Step: StepBranch, Resource: domain.ResourceWorkingTree, Err: err}
	}
	o.recorder.Step(StepBranch, StatusCreated, branch)
	return nil
}

// ensureSite creates the hosting site when absent, links it to the working
// tree and restricts deploys to the managed branches. When present, the
// identifier reported by the probe is returned and no mutating call is
// issued for creation.
func (o *Orchestrator) ensureSite(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot, workingDir string, manifest config.Manifest) (*hosting.Site, error) {
	if snap.Site.Exists {
		o.reporter.Skippedf("Site %s (%s) already exists", snap.Site.Name, snap.Site.ID)
		o.recorder.Step(StepSite, StatusSkipped, snap.Site.ID)
		return &hosting.Site{ID: snap.Site.ID, Name: snap.Site.Name}, nil
	}

	fail := func(err error) (*hosting.Site, error) {
		o.recorder.Step(StepSite, StatusFailed, err.Error())
		return nil, &domain.MutationError{
			Step:     StepSite,
			Resource: domain.ResourceSite,
			Err:      err,
			Hint:     "check that NETLIFY_AUTH_TOKEN is valid and NETLIFY_ACCOUNT_ID matches your team",
		}
	}

	site, err := o.deps.Sites.CreateSite(ctx, hosting.CreateSiteRequest{
		Name:          identity.SiteName(manifest.SitePrefix),
		AccountSlug:   o.cfg.NetlifyAccountID,
		ManualDeploys: true,
	})
	if err != nil {
		return fail(err)
	}

	if err := o.deps.Links.Write(workingDir, site.ID); err != nil {
		return fail(err)
	}
	if err := o.deps.Sites.UpdateAllowedBranches(ctx, site.ID, manifest.Branches()); err != nil {
		return fail(err)
	}

	snap.Site = domain.Present(domain.ResourceSite, site.ID, site.Name)
	o.reporter.Createdf("Site %s created (%s)", site.Name, site.URL)
	o.recorder.Step(StepSite, StatusCreated, site.ID)
	return site, nil
}
