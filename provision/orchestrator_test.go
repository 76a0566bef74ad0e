package provision

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/githost"
	"github.com/siteforge-io/siteforge/hosting"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GitHubToken:        "ghp_test",
		NetlifyAuthToken:   "nfp_test",
		NetlifyAccountID:   "test-account",
		SupabaseURL:        "https://live.supabase.co",
		SupabaseAnonKey:    "live-anon",
		SupabaseDevURL:     "https://dev.supabase.co",
		SupabaseDevAnonKey: "dev-anon",
		WorkspaceDir:       t.TempDir(),
	}
}

func testDeps() (Deps, *MockRepoHost, *MockSiteHost, *MockWorkTree, *MockDatabaseProvider) {
	repos := &MockRepoHost{}
	sites := &MockSiteHost{}
	git := &MockWorkTree{}
	database := &MockDatabaseProvider{}
	deps := Deps{
		Repos:    repos,
		Sites:    sites,
		Links:    &MockSiteLinkStore{},
		Database: database,
		Git:      git,
		Scaffold: &MockScaffolder{},
	}
	return deps, repos, sites, git, database
}

func testIdentity(t *testing.T) domain.ProjectIdentity {
	t.Helper()
	identity, err := domain.NewProjectIdentity("demo")
	require.NoError(t, err)
	return identity
}

func TestProvisionFromScratch(t *testing.T) {
	cfg := testConfig(t)
	deps, repos, sites, git, database := testDeps()
	reporter := &recordingReporter{}
	recorder := &recordingRecorder{}

	o := NewOrchestrator(cfg, deps, reporter, recorder)
	identity := testIdentity(t)

	snap, err := o.Probe(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, "octocat", snap.Owner)
	assert.False(t, snap.WorkingTree.Exists)
	assert.False(t, snap.Repository.Exists)
	assert.False(t, snap.Site.Exists)
	assert.False(t, snap.Database.Exists)

	result, err := o.Provision(context.Background(), identity, snap)
	require.NoError(t, err)

	assert.Equal(t, 1, git.InitCalls)
	assert.Equal(t, 1, repos.CreateCalls)
	assert.Equal(t, 1, sites.CreateCalls)
	assert.Equal(t, 1, database.LinkCalls)
	assert.Equal(t, 1, database.PushCalls)

	// Two settings across three deploy contexts.
	assert.Len(t, sites.EnvVarCalls, 6)
	assert.Contains(t, sites.EnvVarCalls, "SUPABASE_URL/production")
	assert.Contains(t, sites.EnvVarCalls, "SUPABASE_ANON_KEY/branch-preview")

	// Deploys restricted to the managed branches, both published.
	assert.Equal(t, []string{"main", "develop"}, sites.BranchesSeen)
	assert.Equal(t, []string{"develop"}, git.BranchesCreated)
	assert.Equal(t, []string{"main", "develop"}, git.PushedBranches)

	assert.Equal(t, "octocat/demo", result.RepoFullName)
	assert.Equal(t, "site-site-demo", result.SiteID)
	assert.Equal(t, filepath.Join(cfg.WorkspaceDir, "demo"), result.WorkingDir)
	assert.NotEmpty(t, result.Migration)
	assert.FileExists(t, filepath.Join(result.WorkingDir, "supabase", "migrations", result.Migration))

	assert.Contains(t, recorder.steps, "working-tree:created")
	assert.Contains(t, recorder.steps, "repository:created")
	assert.Contains(t, recorder.steps, "site:created")
	assert.Contains(t, recorder.steps, "publish:created")
}

func TestProvisionIsIdempotentWhenEverythingExists(t *testing.T) {
	cfg := testConfig(t)
	deps, repos, sites, git, database := testDeps()

	repos.GetRepositoryFunc = func(ctx context.Context, owner, name string) (*githost.Repository, error) {
		return &githost.Repository{
			Owner:    owner,
			Name:     name,
			FullName: owner + "/" + name,
			CloneURL: "https://github.com/" + owner + "/" + name + ".git",
		}, nil
	}

	o := NewOrchestrator(cfg, deps, &recordingReporter{}, &recordingRecorder{})
	identity := testIdentity(t)

	workingDir := filepath.Join(cfg.WorkspaceDir, "demo")
	snap := &Snapshot{
		Owner:       "octocat",
		WorkingTree: domain.Present(domain.ResourceWorkingTree, workingDir, "demo"),
		Repository:  domain.Present(domain.ResourceRepository, "octocat/demo", "demo"),
		Site:        domain.Present(domain.ResourceSite, "site-123", "site-demo"),
		Database:    domain.Present(domain.ResourceDatabaseLink, "abcdefgh", "abcdefgh"),
	}

	result, err := o.Provision(context.Background(), identity, snap)
	require.NoError(t, err)

	// No resource is created twice.
	assert.Zero(t, git.InitCalls)
	assert.Zero(t, repos.CreateCalls)
	assert.Zero(t, sites.CreateCalls)
	assert.Zero(t, database.LinkCalls)

	// The per-invocation steps still run every time.
	assert.Len(t, sites.EnvVarCalls, 6)
	assert.Equal(t, 1, database.PushCalls)
	assert.Equal(t, []string{"main", "develop"}, git.PushedBranches)

	assert.Equal(t, "site-123", result.SiteID)
	assert.Equal(t, "octocat/demo", result.RepoFullName)
}

func TestProvisionStopsOnFirstFailure(t *testing.T) {
	cfg := testConfig(t)
	deps, _, sites, git, database := testDeps()

	sites.CreateSiteFunc = func(ctx context.Context, req hosting.CreateSiteRequest) (*hosting.Site, error) {
		return nil, errors.New("account suspended")
	}

	o := NewOrchestrator(cfg, deps, nil, nil)
	identity := testIdentity(t)

	snap, err := o.Probe(context.Background(), identity)
	require.NoError(t, err)

	_, err = o.Provision(context.Background(), identity, snap)
	var mutErr *domain.MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, StepSite, mutErr.Step)
	assert.Equal(t, domain.ResourceSite, mutErr.Resource)
	assert.NotEmpty(t, mutErr.Hint)

	// Nothing downstream of the failed step ran.
	assert.Empty(t, sites.EnvVarCalls)
	assert.Zero(t, database.LinkCalls)
	assert.Zero(t, database.PushCalls)
	assert.Empty(t, git.PushedBranches)
}

func TestProvisionRepositoryFailureHasTokenHint(t *testing.T) {
	cfg := testConfig(t)
	deps, repos, sites, _, _ := testDeps()

	repos.CreateRepositoryFunc = func(ctx context.Context, name string) (*githost.Repository, error) {
		return nil, errors.New("403 forbidden")
	}

	o := NewOrchestrator(cfg, deps, nil, nil)
	identity := testIdentity(t)

	snap, err := o.Probe(context.Background(), identity)
	require.NoError(t, err)

	_, err = o.Provision(context.Background(), identity, snap)
	var mutErr *domain.MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, StepRepository, mutErr.Step)
	assert.Contains(t, mutErr.Hint, "GITHUB_TOKEN")

	assert.Zero(t, sites.CreateCalls)
}

func TestProvisionResumesAfterPartialFailure(t *testing.T) {
	cfg := testConfig(t)
	deps, repos, sites, git, _ := testDeps()

	o := NewOrchestrator(cfg, deps, &recordingReporter{}, nil)
	identity := testIdentity(t)
	workingDir := filepath.Join(cfg.WorkspaceDir, "demo")

	// First run died after the repository was created: the probe for the
	// rerun reports working tree and repository present, site absent.
	repos.GetRepositoryFunc = func(ctx context.Context, owner, name string) (*githost.Repository, error) {
		return &githost.Repository{
			Owner:    owner,
			Name:     name,
			FullName: owner + "/" + name,
			CloneURL: "https://github.com/" + owner + "/" + name + ".git",
		}, nil
	}
	snap := &Snapshot{
		Owner:       "octocat",
		WorkingTree: domain.Present(domain.ResourceWorkingTree, workingDir, "demo"),
		Repository:  domain.Present(domain.ResourceRepository, "octocat/demo", "demo"),
		Site:        domain.Absent(domain.ResourceSite),
		Database:    domain.Absent(domain.ResourceDatabaseLink),
	}

	result, err := o.Provision(context.Background(), identity, snap)
	require.NoError(t, err)

	assert.Zero(t, git.InitCalls)
	assert.Zero(t, repos.CreateCalls)
	assert.Equal(t, 1, sites.CreateCalls)
	assert.Equal(t, "site-site-demo", result.SiteID)
}

func TestProvisionSiteNameFollowsManifestPrefix(t *testing.T) {
	cfg := testConfig(t)
	deps, _, sites, _, _ := testDeps()

	var requested hosting.CreateSiteRequest
	sites.CreateSiteFunc = func(ctx context.Context, req hosting.CreateSiteRequest) (*hosting.Site, error) {
		requested = req
		return &hosting.Site{ID: "site-1", Name: req.Name}, nil
	}

	o := NewOrchestrator(cfg, deps, nil, nil)
	identity := testIdentity(t)

	snap, err := o.Probe(context.Background(), identity)
	require.NoError(t, err)
	_, err = o.Provision(context.Background(), identity, snap)
	require.NoError(t, err)

	assert.Equal(t, "site-demo", requested.Name)
	assert.Equal(t, "test-account", requested.AccountSlug)
	assert.True(t, requested.ManualDeploys)
}
