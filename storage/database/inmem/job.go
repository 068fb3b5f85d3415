package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
)

type jobRepository struct {
	db *DB
}

var _ job.Repository = (*jobRepository)(nil) // interface compliance check

func NewJobRepository(db *DB) *jobRepository {
	return &jobRepository{db: db}
}

func (repo *jobRepository) query() []job.Job {
	jobs := make([]job.Job, 0, len(repo.db.jobs))
	for _, j := range repo.db.jobs {
		jobs = append(jobs, *j)
	}
	return jobs
}

func (repo *jobRepository) CreateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	j.ID = uuid.New().String()
	repo.db.jobs[j.ID] = &j
	return j, nil
}

func (repo *jobRepository) QueryJobs(ctx context.Context, filter *job.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]job.Job, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var jobs []job.Job
	for _, j := range repo.query() {
		if matchJob(j, filter) {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.Before(jobs[k].CreatedAt) })
	return jobs, nil
}

func matchJob(j job.Job, filter *job.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(j.Title), s) &&
			!strings.Contains(strings.ToLower(j.Category), s) &&
			!strings.Contains(strings.ToLower(j.Description), s) {
			return false
		}
	}
	if filter.Category != "" && j.Category != filter.Category {
		return false
	}
	if filter.LocationType != "" && j.LocationType != filter.LocationType {
		return false
	}
	if filter.Commitment != "" && j.Commitment != filter.Commitment {
		return false
	}
	if filter.Status != "" && j.Status != filter.Status {
		return false
	}
	if filter.OrgID != "" && j.OrgID != filter.OrgID {
		return false
	}
	if !filter.CreatedFrom.IsZero() && j.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && j.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *jobRepository) GetJob(ctx context.Context, id string, exec ...core.DBExecutor) (job.Job, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if j, ok := repo.db.jobs[id]; ok {
		return *j, nil
	}
	return job.Job{}, job.ErrNotFound
}

func (repo *jobRepository) UpdateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.jobs[j.ID]; !ok {
		return job.Job{}, job.ErrNotFound
	}
	repo.db.jobs[j.ID] = &j
	return j, nil
}

func (repo *jobRepository) DeleteJobsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.jobs[id]; ok {
			delete(repo.db.jobs, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *jobRepository) CountActiveJobs(ctx context.Context, orgID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, j := range repo.query() {
		if j.OrgID == orgID && j.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (repo *jobRepository) CloseExpiredJobs(ctx context.Context, now time.Time, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, j := range repo.db.jobs {
		if j.IsOpen() && j.DeadlinePassed(now) {
			j.Status = job.StatusClosed
			j.UpdatedAt = now
			cnt++
		}
	}
	return cnt, nil
}
