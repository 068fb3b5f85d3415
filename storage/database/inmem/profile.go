package inmemdb

import (
	"context"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/profile"
)

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetVolunteerProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (profile.VolunteerProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.volunteerProfiles[userID]; ok {
		return *p, nil
	}
	return profile.VolunteerProfile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertVolunteerProfile(ctx context.Context, p profile.VolunteerProfile, exec ...core.DBExecutor) (profile.VolunteerProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.volunteerProfiles[p.UserID] = &p
	return p, nil
}

func (repo *profileRepository) GetOrgProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (profile.OrgProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.orgProfiles[userID]; ok {
		return *p, nil
	}
	return profile.OrgProfile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertOrgProfile(ctx context.Context, p profile.OrgProfile, exec ...core.DBExecutor) (profile.OrgProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.orgProfiles[p.UserID] = &p
	return p, nil
}
