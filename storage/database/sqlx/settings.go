package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/settings"
)

type settingsRepository struct {
	db *sqlx.DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *sqlx.DB) *settingsRepository {
	return &settingsRepository{db: db}
}

// settingsRow is the single platform_settings row (id = 1).
type settingsRow struct {
	ID                        int       `db:"id"`
	SignupsOpen               bool      `db:"signups_open"`
	RequireOrgVerification    bool      `db:"require_org_verification"`
	FreeMaxActiveJobs         int       `db:"free_max_active_jobs"`
	FreeFeaturedSlots         int       `db:"free_featured_slots"`
	FreeMaxApplicationsPerJob int       `db:"free_max_applications_per_job"`
	PlusMaxActiveJobs         int       `db:"plus_max_active_jobs"`
	PlusFeaturedSlots         int       `db:"plus_featured_slots"`
	PlusMaxApplicationsPerJob int       `db:"plus_max_applications_per_job"`
	UpdatedAt                 time.Time `db:"updated_at"`
}

func (repo settingsRepository) GetSettings(ctx context.Context, exec ...core.DBExecutor) (settings.PlatformSettings, error) {
	e := ext(repo.db, exec)
	var r settingsRow
	q := e.Rebind(`SELECT * FROM platform_settings WHERE id = ?`)
	if err := sqlx.GetContext(ctx, e, &r, q, 1); err != nil {
		if err == sql.ErrNoRows {
			return settings.PlatformSettings{}, settings.ErrNotFound
		}
		return settings.PlatformSettings{}, errors.Wrap(err, "finding platform settings")
	}
	return settings.PlatformSettings{
		SignupsOpen:            r.SignupsOpen,
		RequireOrgVerification: r.RequireOrgVerification,
		Free: settings.PlanQuotas{
			MaxActiveJobs:         r.FreeMaxActiveJobs,
			FeaturedSlots:         r.FreeFeaturedSlots,
			MaxApplicationsPerJob: r.FreeMaxApplicationsPerJob,
		},
		Plus: settings.PlanQuotas{
			MaxActiveJobs:         r.PlusMaxActiveJobs,
			FeaturedSlots:         r.PlusFeaturedSlots,
			MaxApplicationsPerJob: r.PlusMaxApplicationsPerJob,
		},
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (repo settingsRepository) SaveSettings(ctx context.Context, ps settings.PlatformSettings, exec ...core.DBExecutor) (settings.PlatformSettings, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO platform_settings
(id, signups_open, require_org_verification,
 free_max_active_jobs, free_featured_slots, free_max_applications_per_job,
 plus_max_active_jobs, plus_featured_slots, plus_max_applications_per_job, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
SET signups_open = EXCLUDED.signups_open,
    require_org_verification = EXCLUDED.require_org_verification,
    free_max_active_jobs = EXCLUDED.free_max_active_jobs,
    free_featured_slots = EXCLUDED.free_featured_slots,
    free_max_applications_per_job = EXCLUDED.free_max_applications_per_job,
    plus_max_active_jobs = EXCLUDED.plus_max_active_jobs,
    plus_featured_slots = EXCLUDED.plus_featured_slots,
    plus_max_applications_per_job = EXCLUDED.plus_max_applications_per_job,
    updated_at = EXCLUDED.updated_at`)
	if _, err := e.ExecContext(ctx, q,
		1, ps.SignupsOpen, ps.RequireOrgVerification,
		ps.Free.MaxActiveJobs, ps.Free.FeaturedSlots, ps.Free.MaxApplicationsPerJob,
		ps.Plus.MaxActiveJobs, ps.Plus.FeaturedSlots, ps.Plus.MaxApplicationsPerJob,
		ps.UpdatedAt.UTC(),
	); err != nil {
		return settings.PlatformSettings{}, errors.Wrap(err, "saving platform settings")
	}
	return ps, nil
}
