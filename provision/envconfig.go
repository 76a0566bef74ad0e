package provision

import (
	"context"

	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/domain"
)

// EnvConfigurator applies the database settings of every deploy context to
// the hosting site. Every call is an unconditional upsert; applying the same
// (key, context) pair again is the chosen idempotency mechanism, so no
// existing value is ever pre-checked.
type EnvConfigurator struct {
	sites    SiteHost
	cfg      *config.Config
	reporter Reporter
	recorder Recorder
}

func NewEnvConfigurator(sites SiteHost, cfg *config.Config, reporter Reporter, recorder Recorder) *EnvConfigurator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &EnvConfigurator{sites: sites, cfg: cfg, reporter: reporter, recorder: recorder}
}

// Apply sets both database settings for each deploy context on the site.
// The change mutates live configuration and is visible to subsequent deploys
// immediately.
func (e *EnvConfigurator) Apply(ctx context.Context, siteID string) error {
	applied := 0
	for _, dctx := range domain.AllDeployContexts() {
		url, anonKey := e.cfg.DatabaseSettings(dctx)

		pairs := []struct{ key, value string }{
			{config.KeySupabaseURL, url},
			{config.KeySupabaseAnonKey, anonKey},
		}
		for _, pair := range pairs {
			if err := e.sites.SetEnvVar(ctx, siteID, pair.key, pair.value, dctx); err != nil {
				e.recorder.Step(StepEnvVars, StatusFailed, err.Error())
				return &domain.MutationError{
					Step:     StepEnvVars,
					Resource: domain.ResourceSite,
					Err:      err,
					Hint:     "check that NETLIFY_AUTH_TOKEN is valid",
				}
			}
			applied++
		}
	}

	e.reporter.Createdf("Applied %d environment variables across %d deploy contexts",
		applied, len(domain.AllDeployContexts()))
	e.recorder.Step(StepEnvVars, StatusCreated, "")
	return nil
}
