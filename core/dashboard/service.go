package dashboard

import (
	"context"
	"time"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
)

type (
	// Repository exposes the aggregation queries behind the NGO dashboard.
	// Every query is scoped to the org's own jobs.
	Repository interface {
		CountJobsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) (open, closed int, err error)
		CountApplicationsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]StatusCount, error)
		CountApplicationsByDay(ctx context.Context, orgID string, from time.Time, exec ...core.DBExecutor) ([]DayCount, error)
		CountApplicationsByCategory(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]CategoryCount, error)
		AvgResponseDays(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error)
		AvgRating(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error)
	}

	// Dashboard is the NGO home page payload, fully shaped server-side.
	Dashboard struct {
		OpenJobs           int           `json:"open_jobs"`
		ClosedJobs         int           `json:"closed_jobs"`
		TotalApplications  int           `json:"total_applications"`
		StatusDistribution []StatusSlice `json:"status_distribution"`
		WeeklyTrend        []DayCount    `json:"weekly_trend"`
		CategoryBreakdown  []CategoryBar `json:"category_breakdown"`
		ResponseTimeScore  float64       `json:"response_time_score"`
		QualityScore       float64       `json:"quality_score"`
		AcceptanceRate     float64       `json:"acceptance_rate"`
	}

	ServiceInterface interface {
		ForOrg(ctx context.Context, orgID string) (Dashboard, error)
	}

	Service struct {
		db   core.DB
		repo Repository
		conf *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, conf *core.Config) *Service {
	return &Service{
		db:   db,
		repo: repo,
		conf: conf,
	}
}

// ForOrg assembles the dashboard in a single pass over the repo aggregates.
func (svc *Service) ForOrg(ctx context.Context, orgID string) (Dashboard, error) {
	var d Dashboard

	open, closed, err := svc.repo.CountJobsByStatus(ctx, orgID)
	if err != nil {
		return Dashboard{}, err
	}
	d.OpenJobs, d.ClosedJobs = open, closed

	statusCounts, err := svc.repo.CountApplicationsByStatus(ctx, orgID)
	if err != nil {
		return Dashboard{}, err
	}
	var accepted int
	for _, c := range statusCounts {
		d.TotalApplications += c.Count
		if c.Status == application.StatusAccepted {
			accepted = c.Count
		}
	}
	d.StatusDistribution = StatusDistribution(statusCounts)
	d.AcceptanceRate = AcceptanceRate(accepted, d.TotalApplications)

	now := time.Now().UTC()
	dayCounts, err := svc.repo.CountApplicationsByDay(ctx, orgID, now.AddDate(0, 0, -6))
	if err != nil {
		return Dashboard{}, err
	}
	d.WeeklyTrend = WeeklyTrend(dayCounts, now)

	catCounts, err := svc.repo.CountApplicationsByCategory(ctx, orgID)
	if err != nil {
		return Dashboard{}, err
	}
	d.CategoryBreakdown = CategoryBreakdown(catCounts)

	respDays, err := svc.repo.AvgResponseDays(ctx, orgID)
	if err != nil {
		return Dashboard{}, err
	}
	d.ResponseTimeScore = ResponseTimeScore(respDays)

	rating, err := svc.repo.AvgRating(ctx, orgID)
	if err != nil {
		return Dashboard{}, err
	}
	d.QualityScore = QualityScore(rating)

	return d, nil
}
