package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge-io/siteforge/domain"
)

func TestEnvConfiguratorAppliesAllContexts(t *testing.T) {
	cfg := testConfig(t)
	sites := &MockSiteHost{}

	type applied struct {
		key, value string
		dctx       domain.DeployContext
	}
	var calls []applied
	sites.SetEnvVarFunc = func(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error {
		assert.Equal(t, "site-123", siteID)
		calls = append(calls, applied{key, value, dctx})
		return nil
	}

	e := NewEnvConfigurator(sites, cfg, nil, nil)
	require.NoError(t, e.Apply(context.Background(), "site-123"))

	require.Len(t, calls, 6)

	byContext := map[domain.DeployContext]map[string]string{}
	for _, call := range calls {
		if byContext[call.dctx] == nil {
			byContext[call.dctx] = map[string]string{}
		}
		byContext[call.dctx][call.key] = call.value
	}

	// Production points at the live database, every other context at dev.
	assert.Equal(t, "https://live.supabase.co", byContext[domain.DeployContextProduction]["SUPABASE_URL"])
	assert.Equal(t, "live-anon", byContext[domain.DeployContextProduction]["SUPABASE_ANON_KEY"])
	assert.Equal(t, "https://dev.supabase.co", byContext[domain.DeployContextStaging]["SUPABASE_URL"])
	assert.Equal(t, "dev-anon", byContext[domain.DeployContextBranchPreview]["SUPABASE_ANON_KEY"])
}

func TestEnvConfiguratorStopsOnFirstFailure(t *testing.T) {
	cfg := testConfig(t)
	sites := &MockSiteHost{}

	failures := 0
	sites.SetEnvVarFunc = func(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error {
		failures++
		if failures == 3 {
			return errors.New("rate limited")
		}
		return nil
	}

	e := NewEnvConfigurator(sites, cfg, nil, nil)
	err := e.Apply(context.Background(), "site-123")

	var mutErr *domain.MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, StepEnvVars, mutErr.Step)
	assert.Len(t, sites.EnvVarCalls, 3)
}

func TestEnvConfiguratorIsRepeatable(t *testing.T) {
	cfg := testConfig(t)
	sites := &MockSiteHost{}

	e := NewEnvConfigurator(sites, cfg, nil, nil)
	require.NoError(t, e.Apply(context.Background(), "site-123"))
	require.NoError(t, e.Apply(context.Background(), "site-123"))

	// Upserts are unconditional: the same pairs are applied again.
	assert.Len(t, sites.EnvVarCalls, 12)
	for i := 0; i < 6; i++ {
		assert.Equal(t, sites.EnvVarCalls[i], sites.EnvVarCalls[i+6], fmt.Sprintf("call %d", i))
	}
}
