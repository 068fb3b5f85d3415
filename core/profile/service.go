package profile

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
)

var ErrNotFound = errors.New("profile not found")

type (
	Repository interface {
		GetVolunteerProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (VolunteerProfile, error)
		UpsertVolunteerProfile(ctx context.Context, p VolunteerProfile, exec ...core.DBExecutor) (VolunteerProfile, error)
		GetOrgProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (OrgProfile, error)
		UpsertOrgProfile(ctx context.Context, p OrgProfile, exec ...core.DBExecutor) (OrgProfile, error)
	}

	ServiceInterface interface {
		GetVolunteer(ctx context.Context, userID string) (VolunteerProfile, error)
		UpsertVolunteer(ctx context.Context, userID string, up UpsertVolunteerProfile) (VolunteerProfile, error)
		GetOrg(ctx context.Context, userID string) (OrgProfile, error)
		UpsertOrg(ctx context.Context, userID string, up UpsertOrgProfile) (OrgProfile, error)
		SetOrgVerified(ctx context.Context, userID string, verified bool) (OrgProfile, error)
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

func (svc *Service) GetVolunteer(ctx context.Context, userID string) (VolunteerProfile, error) {
	return svc.repo.GetVolunteerProfile(ctx, userID)
}

func (svc *Service) UpsertVolunteer(ctx context.Context, userID string, up UpsertVolunteerProfile) (VolunteerProfile, error) {
	now := time.Now().UTC()
	p, err := svc.repo.GetVolunteerProfile(ctx, userID)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		p = VolunteerProfile{UserID: userID, CreatedAt: now}
	default:
		return VolunteerProfile{}, err
	}
	p.Headline = up.Headline
	p.Bio = up.Bio
	p.Skills = up.Skills
	p.Languages = up.Languages
	p.Location = up.Location
	p.AvatarURL = up.AvatarURL
	p.UpdatedAt = now
	return svc.repo.UpsertVolunteerProfile(ctx, p)
}

func (svc *Service) GetOrg(ctx context.Context, userID string) (OrgProfile, error) {
	return svc.repo.GetOrgProfile(ctx, userID)
}

func (svc *Service) UpsertOrg(ctx context.Context, userID string, up UpsertOrgProfile) (OrgProfile, error) {
	now := time.Now().UTC()
	p, err := svc.repo.GetOrgProfile(ctx, userID)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		p = OrgProfile{UserID: userID, CreatedAt: now}
	default:
		return OrgProfile{}, err
	}
	// Verified survives the upsert untouched
	p.OrgName = up.OrgName
	p.Mission = up.Mission
	p.Website = up.Website
	p.LogoURL = up.LogoURL
	p.Location = up.Location
	p.UpdatedAt = now
	return svc.repo.UpsertOrgProfile(ctx, p)
}

// SetOrgVerified is admin only; enforced at the transport.
func (svc *Service) SetOrgVerified(ctx context.Context, userID string, verified bool) (OrgProfile, error) {
	p, err := svc.repo.GetOrgProfile(ctx, userID)
	if err != nil {
		return OrgProfile{}, err
	}
	p.Verified = verified
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpsertOrgProfile(ctx, p)
}
