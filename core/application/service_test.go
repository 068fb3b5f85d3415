package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/settings"
	"github.com/trezcool/hisani/core/user"
	emailsvc "github.com/trezcool/hisani/services/email"
	memcache "github.com/trezcool/hisani/storage/cache/mem"
	inmemdb "github.com/trezcool/hisani/storage/database/inmem"
	testutil "github.com/trezcool/hisani/tests"
)

type fixture struct {
	svc      *application.Service
	jobs     *job.Service
	settings *settings.Service
	users    user.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	conf := testutil.NewTestConfig()
	testutil.ParseEmailTemplates(conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	userRepo := inmemdb.NewUserRepository(db)
	userSvc := user.NewService(nil, userRepo, mailSvc, conf)
	settingsSvc := settings.NewService(nil, inmemdb.NewSettingsRepository(db), memcache.New(), conf)
	jobSvc := job.NewService(nil, inmemdb.NewJobRepository(db), settingsSvc, conf)
	appSvc := application.NewService(
		nil, inmemdb.NewApplicationRepository(db), jobSvc, userSvc, settingsSvc, mailSvc, conf)

	return &fixture{
		svc:      appSvc,
		jobs:     jobSvc,
		settings: settingsSvc,
		users:    userRepo,
	}
}

func (f *fixture) createOrg(t *testing.T, plan string) user.User {
	t.Helper()
	org := testutil.CreateUser(t, f.users, "Helping Hands", "helpinghands", "org@test.test", "", []string{user.RoleNGO}, true)
	if plan != org.Plan {
		org.Plan = plan
		org, _ = f.users.UpdateUser(context.Background(), org)
	}
	return org
}

func (f *fixture) createVolunteer(t *testing.T, uname string) user.User {
	t.Helper()
	return testutil.CreateUser(t, f.users, "Jane Doe", uname, uname+"@test.test", "", []string{user.RoleVolunteer}, true)
}

func (f *fixture) postJob(t *testing.T, org user.User) job.Job {
	t.Helper()
	j, err := f.jobs.Create(context.Background(), org, job.NewJob{
		Title:       "River cleanup lead",
		Category:    "Environment",
		Description: "Organize the monthly river cleanup.",
	})
	require.NoError(t, err)
	return j
}

func assertValidationErr(t *testing.T, err, want error) {
	t.Helper()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, want, verr.Err)
}

func TestServiceApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	app, err := f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID, Message: "I live nearby."})
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, j.ID, app.JobID)
	assert.Equal(t, volunteer.ID, app.VolunteerID)
	assert.True(t, app.RespondedAt.IsZero())

	// the org is notified
	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, org.Email, msg.To[0].Address)
	assert.Contains(t, msg.Subject, j.Title)
	assert.Contains(t, msg.TextContent, volunteer.Name)
}

func TestServiceApplyClosedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	_, err := f.jobs.Archive(ctx, org, j.ID)
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	assertValidationErr(t, err, application.ErrJobClosed)
}

func TestServiceApplyDeadlinePassed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	volunteer := f.createVolunteer(t, "janedoe")

	j, err := f.jobs.Create(ctx, org, job.NewJob{
		Title:               "River cleanup lead",
		Category:            "Environment",
		Description:         "Organize the monthly river cleanup.",
		ApplicationDeadline: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	assertValidationErr(t, err, application.ErrDeadlinePassed)
}

func TestServiceApplyTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	_, err := f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	assertValidationErr(t, err, application.ErrAlreadyApplied)
}

func TestServiceApplyJobFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)

	// drop the free plan's per-job cap to 1
	defaults := settings.Defaults()
	defaults.Free.MaxApplicationsPerJob = 1
	signupsOpen, requireVerif := true, false
	_, err := f.settings.Update(ctx, settings.UpdateSettings{
		SignupsOpen:            &signupsOpen,
		RequireOrgVerification: &requireVerif,
		Free:                   defaults.Free,
		Plus:                   defaults.Plus,
	})
	require.NoError(t, err)

	first := f.createVolunteer(t, "janedoe")
	_, err = f.svc.Apply(ctx, first, application.NewApplication{JobID: j.ID})
	require.NoError(t, err)

	// a full job reads as closed to the next volunteer
	second := f.createVolunteer(t, "johnroe")
	_, err = f.svc.Apply(ctx, second, application.NewApplication{JobID: j.ID})
	assertValidationErr(t, err, application.ErrJobClosed)
}

func TestServiceDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	app, err := f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	require.NoError(t, err)

	rating := 4
	app, err = f.svc.Decide(ctx, org, app.ID, application.Decision{Status: application.StatusAccepted, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, application.StatusAccepted, app.Status)
	require.NotNil(t, app.Rating)
	assert.Equal(t, 4, *app.Rating)
	assert.False(t, app.RespondedAt.IsZero())

	// the volunteer is notified
	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, volunteer.Email, msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "accepted")

	// decided applications are final
	_, err = f.svc.Decide(ctx, org, app.ID, application.Decision{Status: application.StatusRejected})
	assertValidationErr(t, err, application.ErrInvalidTransition)
}

func TestServiceDecideOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	app, err := f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	require.NoError(t, err)

	stranger := testutil.CreateUser(t, f.users, "Other Org", "otherorg", "other@test.test", "", []string{user.RoleNGO}, true)
	_, err = f.svc.Decide(ctx, stranger, app.ID, application.Decision{Status: application.StatusAccepted})
	assert.Equal(t, application.ErrNotJobOwner, err)

	// admins bypass the ownership check
	admin := testutil.CreateUser(t, f.users, "Admin", "adminuser", "admin@test.test", "", []string{user.RoleAdmin}, true)
	_, err = f.svc.Decide(ctx, admin, app.ID, application.Decision{Status: application.StatusRejected})
	assert.NoError(t, err)
}

func TestServiceWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.createOrg(t, user.PlanFree)
	j := f.postJob(t, org)
	volunteer := f.createVolunteer(t, "janedoe")

	app, err := f.svc.Apply(ctx, volunteer, application.NewApplication{JobID: j.ID})
	require.NoError(t, err)

	// only the applicant may withdraw
	other := f.createVolunteer(t, "johnroe")
	_, err = f.svc.Withdraw(ctx, other, app.ID)
	assert.Equal(t, application.ErrNotApplicant, err)

	app, err = f.svc.Withdraw(ctx, volunteer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, app.Status)

	// withdrawn is terminal
	_, err = f.svc.Withdraw(ctx, volunteer, app.ID)
	assertValidationErr(t, err, application.ErrInvalidTransition)
}
