package profile

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hisani/core"
)

// VolunteerProfile is the volunteer-facing half of a user's public identity.
// The user record keeps name/email; everything shown on a profile page lives here.
type VolunteerProfile struct {
	UserID    string    `json:"user_id"`
	Headline  string    `json:"headline"`
	Bio       string    `json:"bio"`
	Skills    []string  `json:"skills"`
	Languages []string  `json:"languages"`
	Location  string    `json:"location"`
	AvatarURL string    `json:"avatar_url"` // opaque, supplied by the upload service
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// OrgProfile is the NGO-facing half. Verified is admin-controlled and cannot
// be set through the profile upsert.
type OrgProfile struct {
	UserID    string    `json:"user_id"`
	OrgName   string    `json:"org_name"`
	Mission   string    `json:"mission"`
	Website   string    `json:"website"`
	LogoURL   string    `json:"logo_url"` // opaque, supplied by the upload service
	Location  string    `json:"location"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// UpsertVolunteerProfile is the volunteer profile write shape.
type UpsertVolunteerProfile struct {
	Headline  string   `json:"headline" validate:"max=150"`
	Bio       string   `json:"bio" validate:"max=2000"`
	Skills    []string `json:"skills"`
	Languages []string `json:"languages"`
	Location  string   `json:"location"`
	AvatarURL string   `json:"avatar_url" validate:"omitempty,url"`
}

func (up *UpsertVolunteerProfile) Validate(validate *validator.Validate) error {
	up.Headline = core.CleanString(up.Headline)
	up.Bio = core.CleanString(up.Bio)
	up.Location = core.CleanString(up.Location)
	up.AvatarURL = core.CleanString(up.AvatarURL)
	up.Skills = core.CleanStrings(up.Skills, true /* dedup */)
	up.Languages = core.CleanStrings(up.Languages, true /* dedup */)
	return validate.Struct(up)
}

// UpsertOrgProfile is the org profile write shape.
type UpsertOrgProfile struct {
	OrgName  string `json:"org_name" validate:"required,max=150"`
	Mission  string `json:"mission" validate:"max=2000"`
	Website  string `json:"website" validate:"omitempty,url"`
	LogoURL  string `json:"logo_url" validate:"omitempty,url"`
	Location string `json:"location"`
}

func (up *UpsertOrgProfile) Validate(validate *validator.Validate) error {
	up.OrgName = core.CleanString(up.OrgName)
	up.Mission = core.CleanString(up.Mission)
	up.Website = core.CleanString(up.Website)
	up.LogoURL = core.CleanString(up.LogoURL)
	up.Location = core.CleanString(up.Location)
	return validate.Struct(up)
}
