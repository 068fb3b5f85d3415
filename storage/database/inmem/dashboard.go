package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/dashboard"
	"github.com/trezcool/hisani/core/job"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

type orgApp struct {
	app application.Application
	job job.Job
}

// orgApplications returns the applications to the org's jobs, paired with the job.
func (repo *dashboardRepository) orgApplications(orgID string) []orgApp {
	var out []orgApp
	for _, a := range repo.db.applications {
		j, ok := repo.db.jobs[a.JobID]
		if !ok || j.OrgID != orgID {
			continue
		}
		out = append(out, orgApp{*a, *j})
	}
	return out
}

func (repo *dashboardRepository) CountJobsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) (open, closed int, err error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, j := range repo.db.jobs {
		if j.OrgID != orgID {
			continue
		}
		if j.IsOpen() {
			open++
		} else {
			closed++
		}
	}
	return open, closed, nil
}

func (repo *dashboardRepository) CountApplicationsByStatus(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]dashboard.StatusCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byStatus := make(map[application.Status]int)
	for _, pair := range repo.orgApplications(orgID) {
		byStatus[pair.app.Status]++
	}
	counts := make([]dashboard.StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		counts = append(counts, dashboard.StatusCount{Status: status, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func (repo *dashboardRepository) CountApplicationsByDay(ctx context.Context, orgID string, from time.Time, exec ...core.DBExecutor) ([]dashboard.DayCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byDay := make(map[time.Time]int)
	for _, pair := range repo.orgApplications(orgID) {
		if pair.app.CreatedAt.Before(from) {
			continue
		}
		byDay[pair.app.CreatedAt.UTC().Truncate(24*time.Hour)]++
	}
	counts := make([]dashboard.DayCount, 0, len(byDay))
	for day, count := range byDay {
		counts = append(counts, dashboard.DayCount{Day: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Day.Before(counts[j].Day) })
	return counts, nil
}

func (repo *dashboardRepository) CountApplicationsByCategory(ctx context.Context, orgID string, exec ...core.DBExecutor) ([]dashboard.CategoryCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byCategory := make(map[string]int)
	for _, pair := range repo.orgApplications(orgID) {
		byCategory[pair.job.Category]++
	}
	counts := make([]dashboard.CategoryCount, 0, len(byCategory))
	for category, count := range byCategory {
		counts = append(counts, dashboard.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

func (repo *dashboardRepository) AvgResponseDays(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sum float64
	var n int
	for _, pair := range repo.orgApplications(orgID) {
		if days, ok := pair.app.ResponseDays(); ok {
			sum += days
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (repo *dashboardRepository) AvgRating(ctx context.Context, orgID string, exec ...core.DBExecutor) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sum float64
	var n int
	for _, pair := range repo.orgApplications(orgID) {
		if pair.app.Status == application.StatusAccepted && pair.app.Rating != nil {
			sum += float64(*pair.app.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}
