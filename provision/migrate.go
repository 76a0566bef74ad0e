package provision

import (
	"context"
	"time"

	supadb "github.com/siteforge-io/siteforge/database"
	"github.com/siteforge-io/siteforge/domain"
)

// MigrationApplier links the working tree to the database project when
// needed, generates one timestamped migration artifact and submits it
// non-interactively. A rejected submission is fatal for the invocation.
type MigrationApplier struct {
	database DatabaseProvider
	reporter Reporter
	recorder Recorder
	now      func() time.Time
}

func NewMigrationApplier(database DatabaseProvider, reporter Reporter, recorder Recorder, now func() time.Time) *MigrationApplier {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if now == nil {
		now = time.Now
	}
	return &MigrationApplier{database: database, reporter: reporter, recorder: recorder, now: now}
}

// Apply ensures the database link, writes a fresh artifact and pushes it.
// Returns the artifact name.
func (m *MigrationApplier) Apply(ctx context.Context, workingDir string, identity domain.ProjectIdentity, description, sqlBody string, snap *Snapshot) (string, error) {
	fail := func(err error) (string, error) {
		m.recorder.Step(StepMigration, StatusFailed, err.Error())
		return "", &domain.MutationError{
			Step:     StepMigration,
			Resource: domain.ResourceDatabaseLink,
			Err:      err,
			Hint:     "check SUPABASE_ACCESS_TOKEN, SUPABASE_PROJECT_ID and SUPABASE_DB_PASSWORD",
		}
	}

	if snap.Database.Exists {
		m.reporter.Skippedf("Database already linked to project %s", snap.Database.ID)
	} else {
		if err := m.database.Link(ctx, workingDir); err != nil {
			return fail(err)
		}
		snap.Database = domain.Present(domain.ResourceDatabaseLink, "", "")
		m.reporter.Createdf("Database project linked")
	}

	name, err := supadb.WriteMigration(workingDir, identity, description, sqlBody, m.now())
	if err != nil {
		return fail(err)
	}

	if err := m.database.Push(ctx, workingDir); err != nil {
		return fail(err)
	}

	m.reporter.Createdf("Migration %s applied", name)
	m.recorder.Step(StepMigration, StatusCreated, name)
	return name, nil
}
