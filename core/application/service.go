package application

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("application not found")
	ErrAlreadyApplied    = errors.New("you have already applied to this job")
	ErrJobClosed         = errors.New("this job is no longer accepting applications")
	ErrDeadlinePassed    = errors.New("the application deadline has passed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotJobOwner       = errors.New("application belongs to another organization's job")
	ErrNotApplicant      = errors.New("application belongs to another volunteer")
)

type (
	// GetFilter for a single Application: either by ID, or by the
	// (JobID, VolunteerID) pair.
	GetFilter struct {
		ID          string
		JobID       string
		VolunteerID string
	}

	Repository interface {
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		// QueryApplications applies AND operation on available QueryFilter fields.
		QueryApplications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Application, error)
		GetApplication(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Application, error)
		UpdateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		CountApplications(ctx context.Context, jobID string, exec ...core.DBExecutor) (int, error)
	}

	// JobService is the slice of the job service this package needs.
	JobService interface {
		GetByID(ctx context.Context, id string) (job.Job, error)
	}

	// UserService is the slice of the user service this package needs.
	UserService interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	// SettingsProvider surfaces the per-plan cap on applications per job.
	SettingsProvider interface {
		MaxApplicationsPerJob(ctx context.Context, plan string) (int, error)
	}

	ServiceInterface interface {
		Apply(ctx context.Context, volunteer user.User, na NewApplication) (Application, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Application, error)
		GetByID(ctx context.Context, id string) (Application, error)
		Decide(ctx context.Context, org user.User, id string, d Decision) (Application, error)
		Withdraw(ctx context.Context, volunteer user.User, id string) (Application, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		jobs     JobService
		users    UserService
		settings SettingsProvider
		mail     core.EmailService
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	jobs JobService,
	users UserService,
	settings SettingsProvider,
	mail core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		jobs:     jobs,
		users:    users,
		settings: settings,
		mail:     mail,
		conf:     conf,
	}
}

// Apply files a pending application to an open job.
// Closed jobs, passed deadlines and repeat applications are all rejected.
// A full job (the org plan's per-job cap) reads as closed to the volunteer.
func (svc *Service) Apply(ctx context.Context, volunteer user.User, na NewApplication) (Application, error) {
	j, err := svc.jobs.GetByID(ctx, na.JobID)
	if err != nil {
		return Application{}, err
	}
	if !j.IsOpen() {
		return Application{}, core.NewValidationError(ErrJobClosed)
	}
	if j.DeadlinePassed(time.Now().UTC()) {
		return Application{}, core.NewValidationError(ErrDeadlinePassed)
	}

	if _, err = svc.repo.GetApplication(ctx, GetFilter{JobID: j.ID, VolunteerID: volunteer.ID}); err == nil {
		return Application{}, core.NewValidationError(ErrAlreadyApplied)
	} else if errors.Cause(err) != ErrNotFound {
		return Application{}, err
	}

	org, err := svc.users.GetByID(ctx, j.OrgID)
	if err != nil {
		return Application{}, errors.Wrap(err, "getting job owner")
	}
	limit, err := svc.settings.MaxApplicationsPerJob(ctx, org.Plan)
	if err != nil {
		return Application{}, errors.Wrap(err, "getting plan limit")
	}
	count, err := svc.repo.CountApplications(ctx, j.ID)
	if err != nil {
		return Application{}, errors.Wrap(err, "counting applications")
	}
	if !org.IsPlus() && count >= limit {
		return Application{}, core.NewValidationError(ErrJobClosed)
	}

	app := Application{
		JobID:       j.ID,
		VolunteerID: volunteer.ID,
		Message:     na.Message,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	app, err = svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: org.Name, Address: org.Email}},
		Subject:      "New application: " + j.Title,
		TemplateName: "application-received",
		TemplateData: struct {
			OrgName       string
			VolunteerName string
			JobTitle      string
			JobID         string
		}{
			OrgName:       org.Name,
			VolunteerName: volunteer.Name,
			JobTitle:      j.Title,
			JobID:         j.ID,
		},
	})
	return app, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplication(ctx, GetFilter{ID: id})
}

// Decide records the org's verdict, stamps the response time and notifies
// the volunteer. Only the job's org (or an admin) may decide, and only on a
// pending application.
func (svc *Service) Decide(ctx context.Context, org user.User, id string, d Decision) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, GetFilter{ID: id})
	if err != nil {
		return Application{}, err
	}
	j, err := svc.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if j.OrgID != org.ID && !org.IsAdmin() {
		return Application{}, ErrNotJobOwner
	}
	if !IsTransitionAllowed(app.Status, d.Status) {
		return Application{}, core.NewValidationError(ErrInvalidTransition)
	}

	app.Status = d.Status
	app.Rating = d.Rating
	app.RespondedAt = time.Now().UTC()
	app, err = svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	if volunteer, err := svc.users.GetByID(ctx, app.VolunteerID); err == nil {
		svc.mail.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: volunteer.Name, Address: volunteer.Email}},
			Subject:      "Application update: " + j.Title,
			TemplateName: "application-decided",
			TemplateData: struct {
				VolunteerName string
				JobTitle      string
				Decision      string
			}{
				VolunteerName: volunteer.Name,
				JobTitle:      j.Title,
				Decision:      string(app.Status),
			},
		})
	}
	return app, nil
}

// Withdraw lets the applicant pull a pending application.
func (svc *Service) Withdraw(ctx context.Context, volunteer user.User, id string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, GetFilter{ID: id})
	if err != nil {
		return Application{}, err
	}
	if app.VolunteerID != volunteer.ID {
		return Application{}, ErrNotApplicant
	}
	if !IsTransitionAllowed(app.Status, StatusWithdrawn) {
		return Application{}, core.NewValidationError(ErrInvalidTransition)
	}
	app.Status = StatusWithdrawn
	return svc.repo.UpdateApplication(ctx, app)
}
