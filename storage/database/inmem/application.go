package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
)

type applicationRepository struct {
	db *DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) *applicationRepository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) query() []application.Application {
	apps := make([]application.Application, 0, len(repo.db.applications))
	for _, a := range repo.db.applications {
		apps = append(apps, *a)
	}
	return apps
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	app.ID = uuid.New().String()
	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) QueryApplications(ctx context.Context, filter *application.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]application.Application, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var apps []application.Application
	for _, app := range repo.query() {
		if matchApplication(app, filter) {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })
	return apps, nil
}

func matchApplication(app application.Application, filter *application.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.JobID != "" && app.JobID != filter.JobID {
		return false
	}
	if filter.VolunteerID != "" && app.VolunteerID != filter.VolunteerID {
		return false
	}
	if filter.Status != "" && string(app.Status) != filter.Status {
		return false
	}
	if !filter.CreatedFrom.IsZero() && app.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && app.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *applicationRepository) GetApplication(ctx context.Context, filter application.GetFilter, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.JobID != "" && filter.VolunteerID != "" {
		for _, app := range repo.query() {
			if app.JobID == filter.JobID && app.VolunteerID == filter.VolunteerID {
				return app, nil
			}
		}
		return application.Application{}, application.ErrNotFound
	}
	if app, ok := repo.db.applications[filter.ID]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) UpdateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.applications[app.ID]; !ok {
		return application.Application{}, application.ErrNotFound
	}
	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) CountApplications(ctx context.Context, jobID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, app := range repo.query() {
		if app.JobID == jobID {
			count++
		}
	}
	return count, nil
}
