package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/user"
)

// PlanQuotas are the numeric ceilings attached to a plan tier.
type PlanQuotas struct {
	MaxActiveJobs         int `json:"max_active_jobs" validate:"min=0"`
	FeaturedSlots         int `json:"featured_slots" validate:"min=0"`
	MaxApplicationsPerJob int `json:"max_applications_per_job" validate:"min=0"`
}

// PlatformSettings is the single platform-wide configuration row:
// feature flags plus per-plan quotas. Admin-editable at runtime.
type PlatformSettings struct {
	SignupsOpen            bool       `json:"signups_open"`
	RequireOrgVerification bool       `json:"require_org_verification"`
	Free                   PlanQuotas `json:"free"`
	Plus                   PlanQuotas `json:"plus"`
	UpdatedAt              time.Time  `json:"updated_at"` // UTC
}

// Defaults returns the settings used until an admin edits them.
func Defaults() PlatformSettings {
	return PlatformSettings{
		SignupsOpen:            true,
		RequireOrgVerification: false,
		Free: PlanQuotas{
			MaxActiveJobs:         3,
			FeaturedSlots:         0,
			MaxApplicationsPerJob: 50,
		},
		Plus: PlanQuotas{
			MaxActiveJobs:         100,
			FeaturedSlots:         5,
			MaxApplicationsPerJob: 500,
		},
	}
}

// QuotasFor returns the quotas for a plan tier; unknown plans fall back to free.
func (ps PlatformSettings) QuotasFor(plan string) PlanQuotas {
	if plan == user.PlanPlus {
		return ps.Plus
	}
	return ps.Free
}

// MarshalBinary/UnmarshalBinary make PlatformSettings cacheable.
func (ps PlatformSettings) MarshalBinary() ([]byte, error) { return json.Marshal(ps) }

func (ps *PlatformSettings) UnmarshalBinary(data []byte) error { return json.Unmarshal(data, ps) }

// UpdateSettings defines what information may be provided to modify the
// platform settings. All fields are required so a stale client cannot
// silently zero a quota.
type UpdateSettings struct {
	SignupsOpen            *bool      `json:"signups_open" validate:"required"`
	RequireOrgVerification *bool      `json:"require_org_verification" validate:"required"`
	Free                   PlanQuotas `json:"free" validate:"required"`
	Plus                   PlanQuotas `json:"plus" validate:"required"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Plus.MaxActiveJobs < us.Free.MaxActiveJobs {
		return core.NewValidationError(fmt.Errorf("plus quotas cannot be lower than free quotas"))
	}
	return nil
}
