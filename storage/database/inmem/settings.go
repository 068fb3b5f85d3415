package inmemdb

import (
	"context"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/settings"
)

type settingsRepository struct {
	db *DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(ctx context.Context, exec ...core.DBExecutor) (settings.PlatformSettings, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.settings == nil {
		return settings.PlatformSettings{}, settings.ErrNotFound
	}
	return *repo.db.settings, nil
}

func (repo *settingsRepository) SaveSettings(ctx context.Context, ps settings.PlatformSettings, exec ...core.DBExecutor) (settings.PlatformSettings, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.settings = &ps
	return ps, nil
}
