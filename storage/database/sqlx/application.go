package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
)

type applicationRepository struct {
	db *sqlx.DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) *applicationRepository {
	return &applicationRepository{db: db}
}

type applicationRow struct {
	ID          string         `db:"id"`
	JobID       string         `db:"job_id"`
	VolunteerID string         `db:"volunteer_id"`
	Message     sql.NullString `db:"message"`
	Status      string         `db:"status"`
	Rating      sql.NullInt64  `db:"rating"`
	CreatedAt   time.Time      `db:"created_at"`
	RespondedAt sql.NullTime   `db:"responded_at"`
}

func (r applicationRow) toApplication() application.Application {
	app := application.Application{
		ID:          r.ID,
		JobID:       r.JobID,
		VolunteerID: r.VolunteerID,
		Message:     r.Message.String,
		Status:      application.Status(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if r.Rating.Valid {
		rating := int(r.Rating.Int64)
		app.Rating = &rating
	}
	if r.RespondedAt.Valid {
		app.RespondedAt = r.RespondedAt.Time
	}
	return app
}

func toApplicationRow(app application.Application) applicationRow {
	r := applicationRow{
		ID:          app.ID,
		JobID:       app.JobID,
		VolunteerID: app.VolunteerID,
		Message:     nullStr(app.Message),
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt.UTC(),
		RespondedAt: nullTime(app.RespondedAt),
	}
	if app.Rating != nil {
		r.Rating = sql.NullInt64{Int64: int64(*app.Rating), Valid: true}
	}
	return r
}

const applicationCols = `id, job_id, volunteer_id, message, status, rating, created_at, responded_at`

func (repo applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	app.ID = uuid.New().String()
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO application (` + applicationCols + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	r := toApplicationRow(app)
	if _, err := e.ExecContext(ctx, q,
		r.ID, r.JobID, r.VolunteerID, r.Message, r.Status, r.Rating, r.CreatedAt, r.RespondedAt,
	); err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo applicationRepository) QueryApplications(ctx context.Context, filter *application.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]application.Application, error) {
	e := ext(repo.db, exec)
	q := `SELECT ` + applicationCols + ` FROM application WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.JobID != "" {
			q += ` AND job_id = ?`
			args = append(args, filter.JobID)
		}
		if filter.VolunteerID != "" {
			q += ` AND volunteer_id = ?`
			args = append(args, filter.VolunteerID)
		}
		if filter.Status != "" {
			q += ` AND status = ?`
			args = append(args, filter.Status)
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

	var rows []applicationRow
	if err := sqlx.SelectContext(ctx, e, &rows, e.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]application.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.toApplication())
	}
	return apps, nil
}

func (repo applicationRepository) GetApplication(ctx context.Context, filter application.GetFilter, exec ...core.DBExecutor) (application.Application, error) {
	e := ext(repo.db, exec)
	q := `SELECT ` + applicationCols + ` FROM application WHERE `
	var args []interface{}

	switch {
	case filter.JobID != "" && filter.VolunteerID != "":
		q += `job_id = ? AND volunteer_id = ?`
		args = append(args, filter.JobID, filter.VolunteerID)
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return application.Application{}, application.ErrNotFound
		}
		q += `id = ?`
		args = append(args, filter.ID)
	default:
		return application.Application{}, application.ErrNotFound
	}

	var r applicationRow
	if err := sqlx.GetContext(ctx, e, &r, e.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, errors.Wrap(err, "finding application")
	}
	return r.toApplication(), nil
}

func (repo applicationRepository) UpdateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`UPDATE application
SET message = ?, status = ?, rating = ?, responded_at = ?
WHERE id = ?`)
	r := toApplicationRow(app)
	res, err := e.ExecContext(ctx, q, r.Message, r.Status, r.Rating, r.RespondedAt, r.ID)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return app, nil
}

func (repo applicationRepository) CountApplications(ctx context.Context, jobID string, exec ...core.DBExecutor) (int, error) {
	e := ext(repo.db, exec)
	var count int
	q := e.Rebind(`SELECT COUNT(*) FROM application WHERE job_id = ?`)
	if err := sqlx.GetContext(ctx, e, &count, q, jobID); err != nil {
		return 0, errors.Wrap(err, "counting applications")
	}
	return count, nil
}
