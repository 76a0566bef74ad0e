package provision

import (
	"context"
	"strings"

	"github.com/siteforge-io/siteforge/domain"
)

// Publisher stages and commits the working tree, then pushes every managed
// branch to the hosted repository.
type Publisher struct {
	git      WorkTree
	reporter Reporter
	recorder Recorder
}

func NewPublisher(git WorkTree, reporter Reporter, recorder Recorder) *Publisher {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Publisher{git: git, reporter: reporter, recorder: recorder}
}

// Publish commits pending changes (a clean tree is a benign skip, not an
// error) and pushes the branches in the order given. A push failure on any
// branch is fatal and does not roll back the local commit.
func (p *Publisher) Publish(ctx context.Context, workingDir, message string, branches []string) (bool, error) {
	fail := func(err error) (bool, error) {
		p.recorder.Step(StepPublish, StatusFailed, err.Error())
		return false, &domain.MutationError{
			Step:     StepPublish,
			Resource: domain.ResourceRepository,
			Err:      err,
			Hint:     "check that GITHUB_TOKEN is valid and allows pushing to the repository",
		}
	}

	committed, err := p.git.CommitAll(workingDir, message)
	if err != nil {
		return fail(err)
	}
	if !committed {
		p.reporter.Skippedf("No changes to commit")
	}

	if err := p.git.Push(ctx, workingDir, "origin", branches); err != nil {
		return fail(err)
	}

	p.reporter.Createdf("Pushed branches: %s", strings.Join(branches, ", "))
	p.recorder.Step(StepPublish, StatusCreated, strings.Join(branches, ", "))
	return committed, nil
}
