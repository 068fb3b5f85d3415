package job

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/user"
)

var (
	// errors
	ErrNotFound  = errors.New("job not found")
	ErrNotOwner  = errors.New("job belongs to another organization")
	ErrJobClosed = errors.New("job is closed")
)

type (
	Repository interface {
		CreateJob(ctx context.Context, j Job, exec ...core.DBExecutor) (Job, error)
		// QueryJobs applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Job.Title, Job.Category or Job.Description.
		QueryJobs(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Job, error)
		GetJob(ctx context.Context, id string, exec ...core.DBExecutor) (Job, error)
		UpdateJob(ctx context.Context, j Job, exec ...core.DBExecutor) (Job, error)
		DeleteJobsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountActiveJobs(ctx context.Context, orgID string, exec ...core.DBExecutor) (int, error)
		// CloseExpiredJobs closes every open job whose application deadline
		// is strictly before `now` and returns how many were closed.
		CloseExpiredJobs(ctx context.Context, now time.Time, exec ...core.DBExecutor) (int, error)
	}

	// SettingsProvider surfaces the per-plan posting ceiling. Implemented by
	// the platform settings service; declared here to keep this package free
	// of a dependency on it.
	SettingsProvider interface {
		MaxActiveJobs(ctx context.Context, plan string) (int, error)
	}

	ServiceInterface interface {
		CanPost(ctx context.Context, org user.User) (bool, error)
		Create(ctx context.Context, org user.User, nj NewJob) (Job, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Job, error)
		GetByID(ctx context.Context, id string) (Job, error)
		Update(ctx context.Context, org user.User, id string, uj UpdateJob) (Job, error)
		Archive(ctx context.Context, org user.User, id string) (Job, error)
		Delete(ctx context.Context, org user.User, id string) error
		CountActiveByOrg(ctx context.Context, orgID string) (int, error)
		CloseExpired(ctx context.Context) (int, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		settings SettingsProvider
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, settings SettingsProvider, conf *core.Config) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		settings: settings,
		conf:     conf,
	}
}

// CanPost reports whether the org may post another job under its plan's
// active-job ceiling. Plus members always may.
func (svc *Service) CanPost(ctx context.Context, org user.User) (bool, error) {
	if org.IsPlus() {
		return true, nil
	}
	limit, err := svc.settings.MaxActiveJobs(ctx, org.Plan)
	if err != nil {
		// an unknown quota must not block posting
		return true, nil
	}
	count, err := svc.repo.CountActiveJobs(ctx, org.ID)
	if err != nil {
		return false, errors.Wrap(err, "counting active jobs")
	}
	return CanPost(count, limit, org.IsPlus()), nil
}

// Create posts a new open job for the org, enforcing the plan quota.
// A quota hit returns a core.QuotaError; the caller's draft must survive it.
func (svc *Service) Create(ctx context.Context, org user.User, nj NewJob) (Job, error) {
	ok, err := svc.CanPost(ctx, org)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, core.NewQuotaError(
			fmt.Sprintf("active job limit reached for the %s plan; upgrade to post more jobs", org.Plan))
	}

	now := time.Now().UTC()
	j := Job{
		OrgID:                 org.ID,
		Title:                 nj.Title,
		Category:              nj.Category,
		LocationType:          nj.LocationType,
		Location:              nj.Location,
		Description:           nj.Description,
		Responsibilities:      nj.Responsibilities,
		Requirements:          nj.Requirements,
		Benefits:              nj.Benefits,
		Skills:                nj.Skills,
		Duration:              nj.Duration,
		Commitment:            nj.Commitment,
		ApplicationDeadline:   nj.ApplicationDeadline,
		NumberOfPositions:     nj.NumberOfPositions,
		StartDate:             nj.StartDate,
		Compensation:          nj.Compensation,
		ExperienceLevel:       nj.ExperienceLevel,
		EducationRequired:     nj.EducationRequired,
		LanguagesRequired:     nj.LanguagesRequired,
		CertificationRequired: nj.CertificationRequired,
		Status:                StatusOpen,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	return svc.repo.CreateJob(ctx, j)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Job, error) {
	return svc.repo.QueryJobs(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Job, error) {
	return svc.repo.GetJob(ctx, id)
}

// getOwned fetches the job and checks ownership. Admins bypass the check.
func (svc *Service) getOwned(ctx context.Context, org user.User, id string) (Job, error) {
	j, err := svc.repo.GetJob(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if j.OrgID != org.ID && !org.IsAdmin() {
		return Job{}, ErrNotOwner
	}
	return j, nil
}

func (svc *Service) Update(ctx context.Context, org user.User, id string, uj UpdateJob) (Job, error) {
	j, err := svc.getOwned(ctx, org, id)
	if err != nil {
		return Job{}, err
	}
	j = uj.Apply(j)
	j.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateJob(ctx, j)
}

// Archive closes the job. Closed jobs stop accepting applications but stay
// visible to their org; archiving an already closed job is a no-op.
func (svc *Service) Archive(ctx context.Context, org user.User, id string) (Job, error) {
	j, err := svc.getOwned(ctx, org, id)
	if err != nil {
		return Job{}, err
	}
	if j.Status == StatusClosed {
		return j, nil
	}
	j.Status = StatusClosed
	j.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateJob(ctx, j)
}

func (svc *Service) Delete(ctx context.Context, org user.User, id string) error {
	if _, err := svc.getOwned(ctx, org, id); err != nil {
		return err
	}
	_, err := svc.repo.DeleteJobsByID(ctx, []string{id})
	return err
}

func (svc *Service) CountActiveByOrg(ctx context.Context, orgID string) (int, error) {
	return svc.repo.CountActiveJobs(ctx, orgID)
}

// CloseExpired is the sweeper entry point.
func (svc *Service) CloseExpired(ctx context.Context) (int, error) {
	return svc.repo.CloseExpiredJobs(ctx, time.Now().UTC())
}

// InitValidators registers job specific struct validations.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(compensationStructValidation, Compensation{})
}

// compensationStructValidation checks the tagged union's payload matches its type.
func compensationStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(Compensation)
	switch c.Type {
	case CompensationPaid:
		if c.Paid == nil {
			sl.ReportError(c.Paid, "paid", "Paid", "required_for_type", "")
		}
	case CompensationStipend:
		if c.Stipend == nil {
			sl.ReportError(c.Stipend, "stipend", "Stipend", "required_for_type", "")
		}
	}
}
