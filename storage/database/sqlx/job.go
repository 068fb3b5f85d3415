package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
)

type jobRepository struct {
	db *sqlx.DB
}

var _ job.Repository = (*jobRepository)(nil) // interface compliance check

func NewJobRepository(db *sqlx.DB) *jobRepository {
	return &jobRepository{db: db}
}

// jobRow flattens the compensation union into columns.
type jobRow struct {
	ID                    string         `db:"id"`
	OrgID                 string         `db:"org_id"`
	Title                 string         `db:"title"`
	Category              string         `db:"category"`
	LocationType          string         `db:"location_type"`
	Location              sql.NullString `db:"location"`
	Description           sql.NullString `db:"description"`
	Responsibilities      pq.StringArray `db:"responsibilities"`
	Requirements          pq.StringArray `db:"requirements"`
	Benefits              pq.StringArray `db:"benefits"`
	Skills                pq.StringArray `db:"skills"`
	Duration              sql.NullString `db:"duration"`
	Commitment            sql.NullString `db:"commitment"`
	ApplicationDeadline   sql.NullTime   `db:"application_deadline"`
	NumberOfPositions     int            `db:"number_of_positions"`
	StartDate             sql.NullTime   `db:"start_date"`
	CompensationType      string         `db:"compensation_type"`
	SalaryRange           sql.NullString `db:"salary_range"`
	HourlyRate            sql.NullString `db:"hourly_rate"`
	PaymentFrequency      sql.NullString `db:"payment_frequency"`
	StipendAmount         sql.NullString `db:"stipend_amount"`
	ExperienceLevel       sql.NullString `db:"experience_level"`
	EducationRequired     sql.NullString `db:"education_required"`
	LanguagesRequired     pq.StringArray `db:"languages_required"`
	CertificationRequired sql.NullString `db:"certification_required"`
	Status                string         `db:"status"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func (r jobRow) toJob() job.Job {
	j := job.Job{
		ID:                    r.ID,
		OrgID:                 r.OrgID,
		Title:                 r.Title,
		Category:              r.Category,
		LocationType:          r.LocationType,
		Location:              r.Location.String,
		Description:           r.Description.String,
		Responsibilities:      []string(r.Responsibilities),
		Requirements:          []string(r.Requirements),
		Benefits:              []string(r.Benefits),
		Skills:                []string(r.Skills),
		Duration:              r.Duration.String,
		Commitment:            r.Commitment.String,
		NumberOfPositions:     r.NumberOfPositions,
		Compensation:          job.Compensation{Type: r.CompensationType},
		ExperienceLevel:       r.ExperienceLevel.String,
		EducationRequired:     r.EducationRequired.String,
		LanguagesRequired:     []string(r.LanguagesRequired),
		CertificationRequired: r.CertificationRequired.String,
		Status:                r.Status,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
	if r.ApplicationDeadline.Valid {
		j.ApplicationDeadline = r.ApplicationDeadline.Time
	}
	if r.StartDate.Valid {
		j.StartDate = r.StartDate.Time
	}
	switch r.CompensationType {
	case job.CompensationPaid:
		j.Compensation.Paid = &job.PaidCompensation{
			SalaryRange:      r.SalaryRange.String,
			HourlyRate:       r.HourlyRate.String,
			PaymentFrequency: r.PaymentFrequency.String,
		}
	case job.CompensationStipend:
		j.Compensation.Stipend = &job.StipendCompensation{Amount: r.StipendAmount.String}
	}
	return j
}

func toJobRow(j job.Job) jobRow {
	r := jobRow{
		ID:                    j.ID,
		OrgID:                 j.OrgID,
		Title:                 j.Title,
		Category:              j.Category,
		LocationType:          j.LocationType,
		Location:              nullStr(j.Location),
		Description:           nullStr(j.Description),
		Responsibilities:      pq.StringArray(j.Responsibilities),
		Requirements:          pq.StringArray(j.Requirements),
		Benefits:              pq.StringArray(j.Benefits),
		Skills:                pq.StringArray(j.Skills),
		Duration:              nullStr(j.Duration),
		Commitment:            nullStr(j.Commitment),
		ApplicationDeadline:   nullTime(j.ApplicationDeadline),
		NumberOfPositions:     j.NumberOfPositions,
		StartDate:             nullTime(j.StartDate),
		CompensationType:      j.Compensation.Type,
		ExperienceLevel:       nullStr(j.ExperienceLevel),
		EducationRequired:     nullStr(j.EducationRequired),
		LanguagesRequired:     pq.StringArray(j.LanguagesRequired),
		CertificationRequired: nullStr(j.CertificationRequired),
		Status:                j.Status,
		CreatedAt:             j.CreatedAt.UTC(),
		UpdatedAt:             j.UpdatedAt.UTC(),
	}
	if r.LocationType == "" {
		r.LocationType = job.LocationOnsite
	}
	if r.CompensationType == "" {
		r.CompensationType = job.CompensationUnpaid
	}
	if p := j.Compensation.Paid; p != nil {
		r.SalaryRange = nullStr(p.SalaryRange)
		r.HourlyRate = nullStr(p.HourlyRate)
		r.PaymentFrequency = nullStr(p.PaymentFrequency)
	}
	if s := j.Compensation.Stipend; s != nil {
		r.StipendAmount = nullStr(s.Amount)
	}
	return r
}

const jobCols = `id, org_id, title, category, location_type, location, description,
responsibilities, requirements, benefits, skills, duration, commitment,
application_deadline, number_of_positions, start_date, compensation_type,
salary_range, hourly_rate, payment_frequency, stipend_amount, experience_level,
education_required, languages_required, certification_required, status,
created_at, updated_at`

func (repo jobRepository) CreateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	j.ID = uuid.New().String()
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO job (` + jobCols + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	r := toJobRow(j)
	if _, err := e.ExecContext(ctx, q,
		r.ID, r.OrgID, r.Title, r.Category, r.LocationType, r.Location, r.Description,
		r.Responsibilities, r.Requirements, r.Benefits, r.Skills, r.Duration, r.Commitment,
		r.ApplicationDeadline, r.NumberOfPositions, r.StartDate, r.CompensationType,
		r.SalaryRange, r.HourlyRate, r.PaymentFrequency, r.StipendAmount, r.ExperienceLevel,
		r.EducationRequired, r.LanguagesRequired, r.CertificationRequired, r.Status,
		r.CreatedAt, r.UpdatedAt,
	); err != nil {
		return job.Job{}, errors.Wrap(err, "inserting job")
	}
	return j, nil
}

func (repo jobRepository) QueryJobs(ctx context.Context, filter *job.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]job.Job, error) {
	e := ext(repo.db, exec)
	q := `SELECT ` + jobCols + ` FROM job WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			q += ` AND (title ILIKE ? OR category ILIKE ? OR description ILIKE ?)`
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		if filter.Category != "" {
			q += ` AND category = ?`
			args = append(args, filter.Category)
		}
		if filter.LocationType != "" {
			q += ` AND location_type = ?`
			args = append(args, filter.LocationType)
		}
		if filter.Commitment != "" {
			q += ` AND commitment = ?`
			args = append(args, filter.Commitment)
		}
		if filter.Status != "" {
			q += ` AND status = ?`
			args = append(args, filter.Status)
		}
		if filter.OrgID != "" {
			q += ` AND org_id = ?`
			args = append(args, filter.OrgID)
		}
		if !filter.CreatedFrom.IsZero() {
			q += ` AND created_at >= ?`
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			q += ` AND created_at <= ?`
			args = append(args, filter.CreatedTo.UTC())
		}
	}
	q += orderBy(ordering)

	var rows []jobRow
	if err := sqlx.SelectContext(ctx, e, &rows, e.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying jobs")
	}
	jobs := make([]job.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toJob())
	}
	return jobs, nil
}

func (repo jobRepository) GetJob(ctx context.Context, id string, exec ...core.DBExecutor) (job.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return job.Job{}, job.ErrNotFound
	}
	e := ext(repo.db, exec)
	var r jobRow
	q := e.Rebind(`SELECT ` + jobCols + ` FROM job WHERE id = ?`)
	if err := sqlx.GetContext(ctx, e, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, errors.Wrap(err, "finding job")
	}
	return r.toJob(), nil
}

func (repo jobRepository) UpdateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`UPDATE job
SET title = ?, category = ?, location_type = ?, location = ?, description = ?,
    responsibilities = ?, requirements = ?, benefits = ?, skills = ?, duration = ?,
    commitment = ?, application_deadline = ?, number_of_positions = ?, start_date = ?,
    compensation_type = ?, salary_range = ?, hourly_rate = ?, payment_frequency = ?,
    stipend_amount = ?, experience_level = ?, education_required = ?,
    languages_required = ?, certification_required = ?, status = ?, updated_at = ?
WHERE id = ?`)
	r := toJobRow(j)
	res, err := e.ExecContext(ctx, q,
		r.Title, r.Category, r.LocationType, r.Location, r.Description,
		r.Responsibilities, r.Requirements, r.Benefits, r.Skills, r.Duration,
		r.Commitment, r.ApplicationDeadline, r.NumberOfPositions, r.StartDate,
		r.CompensationType, r.SalaryRange, r.HourlyRate, r.PaymentFrequency,
		r.StipendAmount, r.ExperienceLevel, r.EducationRequired,
		r.LanguagesRequired, r.CertificationRequired, r.Status, r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return job.Job{}, errors.Wrap(err, "updating job")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (repo jobRepository) DeleteJobsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`DELETE FROM job WHERE id = ANY(?)`)
	res, err := e.ExecContext(ctx, q, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting jobs")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo jobRepository) CountActiveJobs(ctx context.Context, orgID string, exec ...core.DBExecutor) (int, error) {
	e := ext(repo.db, exec)
	var count int
	q := e.Rebind(`SELECT COUNT(*) FROM job WHERE org_id = ? AND status = ?`)
	if err := sqlx.GetContext(ctx, e, &count, q, orgID, job.StatusOpen); err != nil {
		return 0, errors.Wrap(err, "counting active jobs")
	}
	return count, nil
}

func (repo jobRepository) CloseExpiredJobs(ctx context.Context, now time.Time, exec ...core.DBExecutor) (int, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`UPDATE job
SET status = ?, updated_at = ?
WHERE status = ? AND application_deadline IS NOT NULL AND application_deadline < ?`)
	res, err := e.ExecContext(ctx, q, job.StatusClosed, now.UTC(), job.StatusOpen, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "closing expired jobs")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
