package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/domain"
)

// ConfirmationToken is the literal an operator must type, exactly, before
// any deletion happens.
const ConfirmationToken = "DELETE"

// TeardownState tracks progress through the deletion sequence.
type TeardownState int

const (
	StateIdle TeardownState = iota
	StateConfirming
	StateDeletingSite
	StateDeletingRepository
	StateDeletingWorkingTree
	StateDone
	StateCancelled
)

func (s TeardownState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateDeletingSite:
		return "deleting site"
	case StateDeletingRepository:
		return "deleting repository"
	case StateDeletingWorkingTree:
		return "deleting working tree"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Confirmer obtains one line of operator input for a prompt.
type Confirmer interface {
	Confirm(prompt string) (string, error)
}

// TeardownResult summarizes one teardown run.
type TeardownResult struct {
	Cancelled bool
	Deleted   []string
	Warnings  []string
}

// PartialFailure reports whether any deletion failed while others went
// through.
func (r *TeardownResult) PartialFailure() bool {
	return len(r.Warnings) > 0
}

// Teardown deletes the hosting site, the hosted repository and the local
// working tree, in that fixed order. Every deletion is best-effort: a
// failure is a warning, never an abort, because a resource may have been
// removed out-of-band already.
type Teardown struct {
	cfg      *config.Config
	prober   *Prober
	deps     Deps
	reporter Reporter
	recorder Recorder
	state    TeardownState
}

func NewTeardown(cfg *config.Config, deps Deps, reporter Reporter, recorder Recorder) *Teardown {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Teardown{
		cfg:      cfg,
		prober:   NewProber(deps.Repos, deps.Sites, deps.Links, deps.Database, deps.Git, cfg.WorkspaceDir),
		deps:     deps,
		reporter: reporter,
		recorder: recorder,
		state:    StateIdle,
	}
}

// Probe returns the current state of every resource.
func (t *Teardown) Probe(ctx context.Context, identity domain.ProjectIdentity) (*Snapshot, error) {
	return t.prober.All(ctx, identity)
}

// State returns the current position in the deletion sequence.
func (t *Teardown) State() TeardownState {
	return t.state
}

// Run requires double confirmation (the project name, then the literal
// DELETE token, both exact-match), then walks the deletion sequence. Any
// other confirmation input cancels the run, which is a non-error outcome.
func (t *Teardown) Run(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot, confirmer Confirmer) (*TeardownResult, error) {
	t.state = StateConfirming

	input, err := confirmer.Confirm(fmt.Sprintf("Type the project name %q to continue: ", identity.Name))
	if err != nil || input != identity.Name {
		t.state = StateCancelled
		t.reporter.Infof("Teardown cancelled.")
		return &TeardownResult{Cancelled: true}, nil
	}

	input, err = confirmer.Confirm(fmt.Sprintf("Type %s to permanently delete all resources: ", ConfirmationToken))
	if err != nil || input != ConfirmationToken {
		t.state = StateCancelled
		t.reporter.Infof("Teardown cancelled.")
		return &TeardownResult{Cancelled: true}, nil
	}

	result := &TeardownResult{}
	workingDir := t.prober.WorkingTreeDir(identity)

	t.state = StateDeletingSite
	t.deleteSite(ctx, identity, snap, workingDir, result)

	t.state = StateDeletingRepository
	t.deleteRepository(ctx, identity, snap, result)

	t.state = StateDeletingWorkingTree
	t.deleteWorkingTree(snap, workingDir, result)

	t.state = StateDone
	slog.Info("Teardown complete",
		"project", identity.Name,
		"deleted", result.Deleted,
		"warnings", len(result.Warnings))
	return result, nil
}

// deleteSite prefers the site id reported by the probe. Only when no link
// record exists does it fall back to the naming convention, with a warning,
// since a site created under a different convention would otherwise be
// missed entirely.
func (t *Teardown) deleteSite(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot, workingDir string, result *TeardownResult) {
	siteID := snap.Site.ID
	if !snap.Site.Exists {
		manifest, err := config.LoadManifest(workingDir)
		if err != nil {
			manifest = config.DefaultManifest()
		}
		conventionName := identity.SiteName(manifest.SitePrefix)
		t.reporter.Warnf("No site link record; falling back to the naming convention %q", conventionName)

		site, err := t.deps.Sites.GetSite(ctx, conventionName+".netlify.app")
		if domain.IsNotFound(err) {
			t.reporter.Skippedf("Site %q not found, nothing to delete", conventionName)
			t.recorder.Step(StepSite, StatusSkipped, conventionName)
			return
		}
		if err != nil {
			t.warn(result, StepSite, fmt.Errorf("failed to look up site %q: %w", conventionName, err))
			return
		}
		siteID = site.ID
	}

	err := t.deps.Sites.DeleteSite(ctx, siteID)
	if domain.IsNotFound(err) {
		t.reporter.Skippedf("Site %s already gone", siteID)
		t.recorder.Step(StepSite, StatusSkipped, siteID)
	} else if err != nil {
		t.warn(result, StepSite, fmt.Errorf("failed to delete site %s: %w", siteID, err))
		return
	} else {
		t.reporter.Createdf("Site %s deleted", siteID)
		t.recorder.Step(StepSite, StatusCreated, siteID)
		result.Deleted = append(result.Deleted, "site "+siteID)
	}

	if err := t.deps.Links.Remove(workingDir); err != nil {
		slog.Warn("Failed to remove site link record", "error", err)
	}
}

func (t *Teardown) deleteRepository(ctx context.Context, identity domain.ProjectIdentity, snap *Snapshot, result *TeardownResult) {
	if !snap.Repository.Exists {
		t.reporter.Skippedf("Repository not found, nothing to delete")
		t.recorder.Step(StepRepository, StatusSkipped, "")
		return
	}

	err := t.deps.Repos.DeleteRepository(ctx, snap.Owner, identity.Name)
	if domain.IsNotFound(err) {
		t.reporter.Skippedf("Repository %s already gone", snap.Repository.ID)
		t.recorder.Step(StepRepository, StatusSkipped, snap.Repository.ID)
		return
	}
	if err != nil {
		t.warn(result, StepRepository, fmt.Errorf("failed to delete repository %s: %w", snap.Repository.ID, err))
		return
	}

	t.reporter.Createdf("Repository %s deleted", snap.Repository.ID)
	t.recorder.Step(StepRepository, StatusCreated, snap.Repository.ID)
	result.Deleted = append(result.Deleted, "repository "+snap.Repository.ID)
}

func (t *Teardown) deleteWorkingTree(snap *Snapshot, workingDir string, result *TeardownResult) {
	if !snap.WorkingTree.Exists {
		t.reporter.Skippedf("Working tree %s not found, nothing to delete", workingDir)
		t.recorder.Step(StepWorkingTree, StatusSkipped, workingDir)
		return
	}

	if err := t.deps.Git.Remove(workingDir); err != nil {
		t.warn(result, StepWorkingTree, fmt.Errorf("failed to remove working tree %s: %w", workingDir, err))
		return
	}

	t.reporter.Createdf("Working tree %s removed", workingDir)
	t.recorder.Step(StepWorkingTree, StatusCreated, workingDir)
	result.Deleted = append(result.Deleted, "working tree "+workingDir)
}

// warn downgrades a deletion failure to a warning and lets the sequence
// continue.
func (t *Teardown) warn(result *TeardownResult, step string, err error) {
	t.reporter.Warnf("%v", err)
	t.recorder.Step(step, StatusWarned, err.Error())
	result.Warnings = append(result.Warnings, err.Error())
}
