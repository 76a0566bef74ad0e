package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/githost"
	"github.com/siteforge-io/siteforge/hosting"
)

// MockRepoHost implements RepoHost for testing
type MockRepoHost struct {
	CurrentUserFunc      func(ctx context.Context) (string, error)
	GetRepositoryFunc    func(ctx context.Context, owner, name string) (*githost.Repository, error)
	CreateRepositoryFunc func(ctx context.Context, name string) (*githost.Repository, error)
	DeleteRepositoryFunc func(ctx context.Context, owner, name string) error

	CreateCalls int
	DeleteCalls int
}

func (m *MockRepoHost) CurrentUser(ctx context.Context) (string, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return "octocat", nil
}

func (m *MockRepoHost) GetRepository(ctx context.Context, owner, name string) (*githost.Repository, error) {
	if m.GetRepositoryFunc != nil {
		return m.GetRepositoryFunc(ctx, owner, name)
	}
	return nil, fmt.Errorf("repository %s/%s: %w", owner, name, domain.ErrNotFound)
}

func (m *MockRepoHost) CreateRepository(ctx context.Context, name string) (*githost.Repository, error) {
	m.CreateCalls++
	if m.CreateRepositoryFunc != nil {
		return m.CreateRepositoryFunc(ctx, name)
	}
	return &githost.Repository{
		Owner:    "octocat",
		Name:     name,
		FullName: "octocat/" + name,
		CloneURL: "https://github.com/octocat/" + name + ".git",
	}, nil
}

func (m *MockRepoHost) DeleteRepository(ctx context.Context, owner, name string) error {
	m.DeleteCalls++
	if m.DeleteRepositoryFunc != nil {
		return m.DeleteRepositoryFunc(ctx, owner, name)
	}
	return nil
}

// MockSiteHost implements SiteHost for testing
type MockSiteHost struct {
	GetSiteFunc               func(ctx context.Context, siteID string) (*hosting.Site, error)
	CreateSiteFunc            func(ctx context.Context, req hosting.CreateSiteRequest) (*hosting.Site, error)
	UpdateAllowedBranchesFunc func(ctx context.Context, siteID string, branches []string) error
	SetEnvVarFunc             func(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error
	DeleteSiteFunc            func(ctx context.Context, siteID string) error

	CreateCalls  int
	DeleteCalls  int
	EnvVarCalls  []string
	BranchesSeen []string
}

func (m *MockSiteHost) GetSite(ctx context.Context, siteID string) (*hosting.Site, error) {
	if m.GetSiteFunc != nil {
		return m.GetSiteFunc(ctx, siteID)
	}
	return nil, fmt.Errorf("site %s: %w", siteID, domain.ErrNotFound)
}

func (m *MockSiteHost) CreateSite(ctx context.Context, req hosting.CreateSiteRequest) (*hosting.Site, error) {
	m.CreateCalls++
	if m.CreateSiteFunc != nil {
		return m.CreateSiteFunc(ctx, req)
	}
	return &hosting.Site{
		ID:   "site-" + req.Name,
		Name: req.Name,
		URL:  "https://" + req.Name + ".netlify.app",
	}, nil
}

func (m *MockSiteHost) UpdateAllowedBranches(ctx context.Context, siteID string, branches []string) error {
	m.BranchesSeen = branches
	if m.UpdateAllowedBranchesFunc != nil {
		return m.UpdateAllowedBranchesFunc(ctx, siteID, branches)
	}
	return nil
}

func (m *MockSiteHost) SetEnvVar(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error {
	m.EnvVarCalls = append(m.EnvVarCalls, fmt.Sprintf("%s/%s", key, dctx))
	if m.SetEnvVarFunc != nil {
		return m.SetEnvVarFunc(ctx, siteID, key, value, dctx)
	}
	return nil
}

func (m *MockSiteHost) DeleteSite(ctx context.Context, siteID string) error {
	m.DeleteCalls++
	if m.DeleteSiteFunc != nil {
		return m.DeleteSiteFunc(ctx, siteID)
	}
	return nil
}

// MockSiteLinkStore implements SiteLinkStore for testing
type MockSiteLinkStore struct {
	mu     sync.Mutex
	linked map[string]string

	WriteFunc func(workingDir, siteID string) error
}

func (m *MockSiteLinkStore) Read(workingDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if siteID, ok := m.linked[workingDir]; ok {
		return siteID, nil
	}
	return "", fmt.Errorf("no site link record: %w", domain.ErrNotFound)
}

func (m *MockSiteLinkStore) Write(workingDir, siteID string) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(workingDir, siteID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linked == nil {
		m.linked = map[string]string{}
	}
	m.linked[workingDir] = siteID
	return nil
}

func (m *MockSiteLinkStore) Remove(workingDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.linked, workingDir)
	return nil
}

// MockDatabaseProvider implements DatabaseProvider for testing
type MockDatabaseProvider struct {
	LinkedProjectRefFunc func(workingDir string) (string, error)
	LinkFunc             func(ctx context.Context, workingDir string) error
	PushFunc             func(ctx context.Context, workingDir string) error

	LinkCalls int
	PushCalls int
}

func (m *MockDatabaseProvider) LinkedProjectRef(workingDir string) (string, error) {
	if m.LinkedProjectRefFunc != nil {
		return m.LinkedProjectRefFunc(workingDir)
	}
	return "", fmt.Errorf("no database link marker: %w", domain.ErrNotFound)
}

func (m *MockDatabaseProvider) Link(ctx context.Context, workingDir string) error {
	m.LinkCalls++
	if m.LinkFunc != nil {
		return m.LinkFunc(ctx, workingDir)
	}
	return nil
}

func (m *MockDatabaseProvider) Push(ctx context.Context, workingDir string) error {
	m.PushCalls++
	if m.PushFunc != nil {
		return m.PushFunc(ctx, workingDir)
	}
	return nil
}

// MockWorkTree implements WorkTree for testing
type MockWorkTree struct {
	ExistsFunc       func(dir string) bool
	InitFunc         func(dir, defaultBranch string) error
	AddRemoteFunc    func(dir, name, url string) error
	CommitAllFunc    func(dir, message string) (bool, error)
	CreateBranchFunc func(dir, name string) error
	PushFunc         func(ctx context.Context, dir, remote string, branches []string) error
	RemoveFunc       func(dir string) error

	InitCalls       int
	RemoveCalls     int
	CommitCalls     int
	BranchesCreated []string
	PushedBranches  []string
}

func (m *MockWorkTree) Exists(dir string) bool {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(dir)
	}
	return false
}

func (m *MockWorkTree) Init(dir, defaultBranch string) error {
	m.InitCalls++
	if m.InitFunc != nil {
		return m.InitFunc(dir, defaultBranch)
	}
	return nil
}

func (m *MockWorkTree) AddRemote(dir, name, url string) error {
	if m.AddRemoteFunc != nil {
		return m.AddRemoteFunc(dir, name, url)
	}
	return nil
}

func (m *MockWorkTree) CommitAll(dir, message string) (bool, error) {
	m.CommitCalls++
	if m.CommitAllFunc != nil {
		return m.CommitAllFunc(dir, message)
	}
	return true, nil
}

func (m *MockWorkTree) CreateBranch(dir, name string) error {
	m.BranchesCreated = append(m.BranchesCreated, name)
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(dir, name)
	}
	return nil
}

func (m *MockWorkTree) Push(ctx context.Context, dir, remote string, branches []string) error {
	m.PushedBranches = append(m.PushedBranches, branches...)
	if m.PushFunc != nil {
		return m.PushFunc(ctx, dir, remote, branches)
	}
	return nil
}

func (m *MockWorkTree) Remove(dir string) error {
	m.RemoveCalls++
	if m.RemoveFunc != nil {
		return m.RemoveFunc(dir)
	}
	return nil
}

// MockScaffolder implements Scaffolder for testing
type MockScaffolder struct {
	WriteStarterFilesFunc func(dir string, identity domain.ProjectIdentity) error

	WriteCalls int
}

func (m *MockScaffolder) WriteStarterFiles(dir string, identity domain.ProjectIdentity) error {
	m.WriteCalls++
	if m.WriteStarterFilesFunc != nil {
		return m.WriteStarterFilesFunc(dir, identity)
	}
	return nil
}

// recordingReporter captures progress messages by kind.
type recordingReporter struct {
	infos    []string
	created  []string
	skipped  []string
	warnings []string
}

func (r *recordingReporter) Infof(format string, a ...any) {
	r.infos = append(r.infos, fmt.Sprintf(format, a...))
}

func (r *recordingReporter) Createdf(format string, a ...any) {
	r.created = append(r.created, fmt.Sprintf(format, a...))
}

func (r *recordingReporter) Skippedf(format string, a ...any) {
	r.skipped = append(r.skipped, fmt.Sprintf(format, a...))
}

func (r *recordingReporter) Warnf(format string, a ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, a...))
}

// recordingRecorder captures journal step outcomes.
type recordingRecorder struct {
	steps []string
}

func (r *recordingRecorder) Step(name, status, detail string) {
	r.steps = append(r.steps, name+":"+status)
}

// scriptedConfirmer returns pre-scripted answers in order.
type scriptedConfirmer struct {
	answers []string
	next    int
}

func (c *scriptedConfirmer) Confirm(string) (string, error) {
	if c.next >= len(c.answers) {
		return "", fmt.Errorf("no more scripted answers")
	}
	answer := c.answers[c.next]
	c.next++
	return answer, nil
}
