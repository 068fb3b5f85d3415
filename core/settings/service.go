package settings

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
)

const cacheKey = "hisani:platform-settings"

var ErrNotFound = errors.New("platform settings not found")

type (
	Repository interface {
		GetSettings(ctx context.Context, exec ...core.DBExecutor) (PlatformSettings, error)
		SaveSettings(ctx context.Context, ps PlatformSettings, exec ...core.DBExecutor) (PlatformSettings, error)
	}

	ServiceInterface interface {
		Get(ctx context.Context) (PlatformSettings, error)
		Update(ctx context.Context, us UpdateSettings) (PlatformSettings, error)
		MaxActiveJobs(ctx context.Context, plan string) (int, error)
		MaxApplicationsPerJob(ctx context.Context, plan string) (int, error)
		FeaturedSlots(ctx context.Context, plan string) (int, error)
		SignupsOpen(ctx context.Context) (bool, error)
	}

	// Service reads settings through the cache; the database is only hit on
	// a miss and every update invalidates the cached copy.
	Service struct {
		db    core.DB
		repo  Repository
		cache core.Cache
		conf  *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, cache core.Cache, conf *core.Config) *Service {
	return &Service{
		db:    db,
		repo:  repo,
		cache: cache,
		conf:  conf,
	}
}

func (svc *Service) Get(ctx context.Context) (PlatformSettings, error) {
	var ps PlatformSettings
	if err := svc.cache.Get(ctx, cacheKey, &ps); err == nil {
		return ps, nil
	}

	ps, err := svc.repo.GetSettings(ctx)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		ps = Defaults()
	default:
		return PlatformSettings{}, err
	}

	// a failed cache write is not worth failing the read
	_ = svc.cache.Set(ctx, cacheKey, ps, svc.conf.SettingsCacheTTL)
	return ps, nil
}

func (svc *Service) Update(ctx context.Context, us UpdateSettings) (PlatformSettings, error) {
	ps, err := svc.Get(ctx)
	if err != nil {
		return PlatformSettings{}, err
	}
	ps.SignupsOpen = *us.SignupsOpen
	ps.RequireOrgVerification = *us.RequireOrgVerification
	ps.Free = us.Free
	ps.Plus = us.Plus
	ps.UpdatedAt = time.Now().UTC()

	ps, err = svc.repo.SaveSettings(ctx, ps)
	if err != nil {
		return PlatformSettings{}, err
	}
	if err = svc.cache.Delete(ctx, cacheKey); err != nil {
		return PlatformSettings{}, errors.Wrap(err, "invalidating settings cache")
	}
	return ps, nil
}

func (svc *Service) MaxActiveJobs(ctx context.Context, plan string) (int, error) {
	ps, err := svc.Get(ctx)
	if err != nil {
		return 0, err
	}
	return ps.QuotasFor(plan).MaxActiveJobs, nil
}

func (svc *Service) MaxApplicationsPerJob(ctx context.Context, plan string) (int, error) {
	ps, err := svc.Get(ctx)
	if err != nil {
		return 0, err
	}
	return ps.QuotasFor(plan).MaxApplicationsPerJob, nil
}

func (svc *Service) FeaturedSlots(ctx context.Context, plan string) (int, error) {
	ps, err := svc.Get(ctx)
	if err != nil {
		return 0, err
	}
	return ps.QuotasFor(plan).FeaturedSlots, nil
}

func (svc *Service) SignupsOpen(ctx context.Context) (bool, error) {
	ps, err := svc.Get(ctx)
	if err != nil {
		return false, err
	}
	return ps.SignupsOpen, nil
}
