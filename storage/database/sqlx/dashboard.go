package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/dashboard"
	"github.com/trezcool/hisani/core/job"
)

type dashboardRepository struct {
	db *sqlx.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *sqlx.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo dashboardRepository) CountJobsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) (open, closed int, err error) {
	e := ext(repo.db, exec)
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	q := e.Rebind(`SELECT status, COUNT(*) AS count FROM job WHERE org_id = ? GROUP BY status`)
	if err = sqlx.SelectContext(ctx, e, &rows, q, orgID); err != nil {
		return 0, 0, errors.Wrap(err, "counting jobs by status")
	}
	for _, r := range rows {
		switch r.Status {
		case job.StatusOpen:
			open = r.Count
		case job.StatusClosed:
			closed = r.Count
		}
	}
	return open, closed, nil
}

func (repo dashboardRepository) CountApplicationsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]dashboard.StatusCount, error) {
	e := ext(repo.db, exec)
	var counts []dashboard.StatusCount
	q := e.Rebind(`SELECT a.status, COUNT(*) AS count
FROM application a JOIN job j ON j.id = a.job_id
WHERE j.org_id = ?
GROUP BY a.status
ORDER BY a.status`)
	if err := sqlx.SelectContext(ctx, e, &counts, q, orgID); err != nil {
		return nil, errors.Wrap(err, "counting applications by status")
	}
	return counts, nil
}

func (repo dashboardRepository) CountApplicationsByDay(ctx context.Context, orgID string, from time.Time, exec ...core.DBExecutor) ([]dashboard.DayCount, error) {
	e := ext(repo.db, exec)
	var counts []dashboard.DayCount
	q := e.Rebind(`SELECT date_trunc('day', a.created_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS count
FROM application a JOIN job j ON j.id = a.job_id
WHERE j.org_id = ? AND a.created_at >= ?
GROUP BY day
ORDER BY day`)
	if err := sqlx.SelectContext(ctx, e, &counts, q, orgID, from.UTC()); err != nil {
		return nil, errors.Wrap(err, "counting applications by day")
	}
	return counts, nil
}

func (repo dashboardRepository) CountApplicationsByCategory(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]dashboard.CategoryCount, error) {
	e := ext(repo.db, exec)
	var counts []dashboard.CategoryCount
	q := e.Rebind(`SELECT j.category, COUNT(*) AS count
FROM application a JOIN job j ON j.id = a.job_id
WHERE j.org_id = ?
GROUP BY j.category
ORDER BY count DESC`)
	if err := sqlx.SelectContext(ctx, e, &counts, q, orgID); err != nil {
		return nil, errors.Wrap(err, "counting applications by category")
	}
	return counts, nil
}

func (repo dashboardRepository) AvgResponseDays(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error) {
	e := ext(repo.db, exec)
	var days float64
	q := e.Rebind(`SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (a.responded_at - a.created_at)) / 86400), 0)
FROM application a JOIN job j ON j.id = a.job_id
WHERE j.org_id = ? AND a.responded_at IS NOT NULL`)
	if err := sqlx.GetContext(ctx, e, &days, q, orgID); err != nil {
		return 0, errors.Wrap(err, "averaging response days")
	}
	return days, nil
}

func (repo dashboardRepository) AvgRating(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error) {
	e := ext(repo.db, exec)
	var rating float64
	q := e.Rebind(`SELECT COALESCE(AVG(a.rating), 0)
FROM application a JOIN job j ON j.id = a.job_id
WHERE j.org_id = ? AND a.rating IS NOT NULL AND a.status = ?`)
	if err := sqlx.GetContext(ctx, e, &rating, q, orgID, application.StatusAccepted); err != nil {
		return 0, errors.Wrap(err, "averaging ratings")
	}
	return rating, nil
}
