package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/settings"
	"github.com/trezcool/hisani/core/user"
	memcache "github.com/trezcool/hisani/storage/cache/mem"
	inmemdb "github.com/trezcool/hisani/storage/database/inmem"
)

func newSvc(t *testing.T) (*settings.Service, settings.Repository, *memcache.Cache) {
	t.Helper()
	db := inmemdb.NewDB()
	repo := inmemdb.NewSettingsRepository(db)
	cache := memcache.New()
	conf := &core.Config{SettingsCacheTTL: time.Minute}
	return settings.NewService(nil, repo, cache, conf), repo, cache
}

func TestServiceGetDefaults(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	ps, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ps.SignupsOpen)
	assert.Equal(t, 3, ps.Free.MaxActiveJobs)
	assert.Equal(t, 100, ps.Plus.MaxActiveJobs)
	assert.Equal(t, 50, ps.Free.MaxApplicationsPerJob)
}

func TestServiceGetReadsThroughCache(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()

	// prime the cache
	_, err := svc.Get(ctx)
	require.NoError(t, err)

	// a direct repo write is invisible until the cache expires or is invalidated
	ps := settings.Defaults()
	ps.Free.MaxActiveJobs = 7
	_, err = repo.SaveSettings(ctx, ps)
	require.NoError(t, err)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Free.MaxActiveJobs)
}

func TestServiceUpdateInvalidatesCache(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Get(ctx) // prime
	require.NoError(t, err)

	open, verif := false, true
	us := settings.UpdateSettings{
		SignupsOpen:            &open,
		RequireOrgVerification: &verif,
		Free:                   settings.PlanQuotas{MaxActiveJobs: 5, FeaturedSlots: 1, MaxApplicationsPerJob: 20},
		Plus:                   settings.PlanQuotas{MaxActiveJobs: 200, FeaturedSlots: 10, MaxApplicationsPerJob: 1000},
	}
	_, err = svc.Update(ctx, us)
	require.NoError(t, err)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.SignupsOpen)
	assert.Equal(t, 5, got.Free.MaxActiveJobs)
	assert.Equal(t, 200, got.Plus.MaxActiveJobs)
}

func TestServiceQuotaLookups(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	max, err := svc.MaxActiveJobs(ctx, user.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 3, max)

	max, err = svc.MaxActiveJobs(ctx, user.PlanPlus)
	require.NoError(t, err)
	assert.Equal(t, 100, max)

	// unknown plans fall back to free
	max, err = svc.MaxApplicationsPerJob(ctx, "enterprise")
	require.NoError(t, err)
	assert.Equal(t, 50, max)
}
