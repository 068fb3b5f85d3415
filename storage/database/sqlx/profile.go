package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/profile"
)

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{db: db}
}

type volunteerProfileRow struct {
	UserID    string         `db:"user_id"`
	Headline  sql.NullString `db:"headline"`
	Bio       sql.NullString `db:"bio"`
	Skills    pq.StringArray `db:"skills"`
	Languages pq.StringArray `db:"languages"`
	Location  sql.NullString `db:"location"`
	AvatarURL sql.NullString `db:"avatar_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type orgProfileRow struct {
	UserID    string         `db:"user_id"`
	OrgName   sql.NullString `db:"org_name"`
	Mission   sql.NullString `db:"mission"`
	Website   sql.NullString `db:"website"`
	LogoURL   sql.NullString `db:"logo_url"`
	Location  sql.NullString `db:"location"`
	Verified  bool           `db:"verified"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (repo profileRepository) GetVolunteerProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (profile.VolunteerProfile, error) {
	e := ext(repo.db, exec)
	var r volunteerProfileRow
	q := e.Rebind(`SELECT user_id, headline, bio, skills, languages, location, avatar_url, created_at, updated_at
FROM volunteer_profile WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, e, &r, q, userID); err != nil {
		if err == sql.ErrNoRows {
			return profile.VolunteerProfile{}, profile.ErrNotFound
		}
		return profile.VolunteerProfile{}, errors.Wrap(err, "finding volunteer profile")
	}
	return profile.VolunteerProfile{
		UserID:    r.UserID,
		Headline:  r.Headline.String,
		Bio:       r.Bio.String,
		Skills:    []string(r.Skills),
		Languages: []string(r.Languages),
		Location:  r.Location.String,
		AvatarURL: r.AvatarURL.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (repo profileRepository) UpsertVolunteerProfile(ctx context.Context, p profile.VolunteerProfile, exec ...core.DBExecutor) (profile.VolunteerProfile, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO volunteer_profile
(user_id, headline, bio, skills, languages, location, avatar_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET headline = EXCLUDED.headline, bio = EXCLUDED.bio, skills = EXCLUDED.skills,
    languages = EXCLUDED.languages, location = EXCLUDED.location,
    avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at`)
	if _, err := e.ExecContext(ctx, q,
		p.UserID, nullStr(p.Headline), nullStr(p.Bio), pq.StringArray(p.Skills),
		pq.StringArray(p.Languages), nullStr(p.Location), nullStr(p.AvatarURL),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	); err != nil {
		return profile.VolunteerProfile{}, errors.Wrap(err, "upserting volunteer profile")
	}
	return p, nil
}

func (repo profileRepository) GetOrgProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (profile.OrgProfile, error) {
	e := ext(repo.db, exec)
	var r orgProfileRow
	q := e.Rebind(`SELECT user_id, org_name, mission, website, logo_url, location, verified, created_at, updated_at
FROM org_profile WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, e, &r, q, userID); err != nil {
		if err == sql.ErrNoRows {
			return profile.OrgProfile{}, profile.ErrNotFound
		}
		return profile.OrgProfile{}, errors.Wrap(err, "finding org profile")
	}
	return profile.OrgProfile{
		UserID:    r.UserID,
		OrgName:   r.OrgName.String,
		Mission:   r.Mission.String,
		Website:   r.Website.String,
		LogoURL:   r.LogoURL.String,
		Location:  r.Location.String,
		Verified:  r.Verified,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (repo profileRepository) UpsertOrgProfile(ctx context.Context, p profile.OrgProfile, exec ...core.DBExecutor) (profile.OrgProfile, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO org_profile
(user_id, org_name, mission, website, logo_url, location, verified, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET org_name = EXCLUDED.org_name, mission = EXCLUDED.mission, website = EXCLUDED.website,
    logo_url = EXCLUDED.logo_url, location = EXCLUDED.location,
    verified = EXCLUDED.verified, updated_at = EXCLUDED.updated_at`)
	if _, err := e.ExecContext(ctx, q,
		p.UserID, nullStr(p.OrgName), nullStr(p.Mission), nullStr(p.Website),
		nullStr(p.LogoURL), nullStr(p.Location), p.Verified,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	); err != nil {
		return profile.OrgProfile{}, errors.Wrap(err, "upserting org profile")
	}
	return p, nil
}
