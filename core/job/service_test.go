package job_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/settings"
	"github.com/trezcool/hisani/core/user"
	memcache "github.com/trezcool/hisani/storage/cache/mem"
	inmemdb "github.com/trezcool/hisani/storage/database/inmem"
)

func newJobSvc(t *testing.T) (*job.Service, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.NewDB()
	conf := &core.Config{SettingsCacheTTL: time.Minute}
	settingsSvc := settings.NewService(nil, inmemdb.NewSettingsRepository(db), memcache.New(), conf)
	return job.NewService(nil, inmemdb.NewJobRepository(db), settingsSvc, conf), db
}

func newOrg(plan string) user.User {
	org := user.User{
		ID:    "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Name:  "Helping Hands",
		Email: "org@test.test",
		Roles: []string{user.RoleNGO},
		Plan:  plan,
	}
	org.SetActive(true)
	return org
}

func validNewJob() job.NewJob {
	nj := job.NewJob{
		Title:       "Community garden coordinator",
		Category:    "Environment",
		Description: "Run the weekly garden sessions.",
	}
	nj.Clean()
	return nj
}

func TestServiceCreateQuota(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanFree)

	// free plan default limit is 3
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, org, validNewJob())
		require.NoError(t, err)
	}

	ok, err := svc.CanPost(ctx, org)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Create(ctx, org, validNewJob())
	require.Error(t, err)
	var qerr *core.QuotaError
	assert.ErrorAs(t, err, &qerr)

	// archiving one frees a slot
	jobs, err := svc.Query(ctx, &job.QueryFilter{OrgID: org.ID}, nil)
	require.NoError(t, err)
	_, err = svc.Archive(ctx, org, jobs[0].ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, org, validNewJob())
	assert.NoError(t, err)
}

func TestServiceCreatePlusUnlimited(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanPlus)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, org, validNewJob())
		require.NoError(t, err)
	}
	ok, err := svc.CanPost(ctx, org)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceCreateExpiredPlusIsFree(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanPlus)
	org.PlanExpiresAt = time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, org, validNewJob())
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, org, validNewJob())
	var qerr *core.QuotaError
	assert.ErrorAs(t, err, &qerr)
}

func TestServiceOwnership(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanFree)

	j, err := svc.Create(ctx, org, validNewJob())
	require.NoError(t, err)

	stranger := newOrg(user.PlanFree)
	stranger.ID = "7ba7b810-9dad-11d1-80b4-00c04fd430c8"

	_, err = svc.Update(ctx, stranger, j.ID, job.UpdateJob{Title: "Hijacked"})
	assert.Equal(t, job.ErrNotOwner, err)

	err = svc.Delete(ctx, stranger, j.ID)
	assert.Equal(t, job.ErrNotOwner, err)

	// admins bypass the ownership check
	admin := newOrg(user.PlanFree)
	admin.ID = "8ba7b810-9dad-11d1-80b4-00c04fd430c8"
	admin.Roles = []string{user.RoleAdmin}
	_, err = svc.Archive(ctx, admin, j.ID)
	assert.NoError(t, err)
}

func TestServiceUpdateMerges(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanFree)

	nj := validNewJob()
	nj.Skills = []string{"Gardening"}
	j, err := svc.Create(ctx, org, nj)
	require.NoError(t, err)

	got, err := svc.Update(ctx, org, j.ID, job.UpdateJob{Title: "Garden lead"})
	require.NoError(t, err)
	assert.Equal(t, "Garden lead", got.Title)
	assert.Equal(t, nj.Category, got.Category)
	assert.Equal(t, []string{"Gardening"}, got.Skills)
}

func TestServiceCloseExpired(t *testing.T) {
	svc, _ := newJobSvc(t)
	ctx := context.Background()
	org := newOrg(user.PlanPlus)

	past := validNewJob()
	past.ApplicationDeadline = time.Now().Add(-time.Hour)
	expired, err := svc.Create(ctx, org, past)
	require.NoError(t, err)

	future := validNewJob()
	future.ApplicationDeadline = time.Now().Add(time.Hour)
	alive, err := svc.Create(ctx, org, future)
	require.NoError(t, err)

	n, err := svc.CloseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusClosed, got.Status)

	got, err = svc.GetByID(ctx, alive.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}
