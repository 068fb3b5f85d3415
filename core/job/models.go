package job

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hisani/core"
)

// Location types
const (
	LocationOnsite = "onsite"
	LocationRemote = "remote"
	LocationHybrid = "hybrid"
)

// Commitments
const (
	CommitmentFullTime = "full-time"
	CommitmentPartTime = "part-time"
	CommitmentFlexible = "flexible"
)

// Compensation types
const (
	CompensationPaid    = "paid"
	CompensationUnpaid  = "unpaid"
	CompensationStipend = "stipend"
)

// Statuses. A job's status is only ever mutated after persistence;
// drafts have no status of their own.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// DescriptionMaxLen bounds Job.Description, enforced server-side.
const DescriptionMaxLen = 2000

type (
	// PaidCompensation is the payload for compensation type "paid".
	PaidCompensation struct {
		SalaryRange      string `json:"salary_range"`
		HourlyRate       string `json:"hourly_rate"`
		PaymentFrequency string `json:"payment_frequency"`
	}

	// StipendCompensation is the payload for compensation type "stipend".
	StipendCompensation struct {
		Amount string `json:"amount"`
	}

	// Compensation is a tagged union: exactly one payload is meaningful,
	// selected by Type. Normalize blanks the unselected payloads.
	Compensation struct {
		Type    string               `json:"type" validate:"omitempty,oneof=paid unpaid stipend"`
		Paid    *PaidCompensation    `json:"paid,omitempty"`
		Stipend *StipendCompensation `json:"stipend,omitempty"`
	}
)

func (c *Compensation) Normalize() {
	if c.Type == "" {
		c.Type = CompensationUnpaid
	}
	switch c.Type {
	case CompensationPaid:
		c.Stipend = nil
	case CompensationStipend:
		c.Paid = nil
	default:
		c.Paid = nil
		c.Stipend = nil
	}
}

type Job struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`

	// identity
	Title        string `json:"title"`
	Category     string `json:"category"`
	LocationType string `json:"location_type"`
	Location     string `json:"location"`

	// descriptive
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
	Skills           []string `json:"skills"`

	// logistics
	Duration            string    `json:"duration"`
	Commitment          string    `json:"commitment"`
	ApplicationDeadline time.Time `json:"application_deadline"`
	NumberOfPositions   int       `json:"number_of_positions"`
	StartDate           time.Time `json:"start_date"`

	Compensation Compensation `json:"compensation"`

	// qualifications
	ExperienceLevel       string   `json:"experience_level"`
	EducationRequired     string   `json:"education_required"`
	LanguagesRequired     []string `json:"languages_required"`
	CertificationRequired string   `json:"certification_required"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (j *Job) IsOpen() bool { return j.Status == StatusOpen }

// DeadlinePassed reports whether the application deadline (if any) is in the past.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return !j.ApplicationDeadline.IsZero() && j.ApplicationDeadline.Before(now)
}

// NewJob contains information needed to create a new Job.
// It is also the shape of a wizard draft's data.
type NewJob struct {
	Title        string `json:"title" validate:"required"`
	Category     string `json:"category" validate:"required"`
	LocationType string `json:"location_type" validate:"omitempty,oneof=onsite remote hybrid"`
	Location     string `json:"location"`

	Description      string   `json:"description" validate:"required,max=2000"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
	Skills           []string `json:"skills"`

	Duration            string    `json:"duration"`
	Commitment          string    `json:"commitment" validate:"omitempty,oneof=full-time part-time flexible"`
	ApplicationDeadline time.Time `json:"application_deadline"`
	NumberOfPositions   int       `json:"number_of_positions" validate:"omitempty,min=1"`
	StartDate           time.Time `json:"start_date"`

	Compensation Compensation `json:"compensation"`

	ExperienceLevel       string   `json:"experience_level"`
	EducationRequired     string   `json:"education_required"`
	LanguagesRequired     []string `json:"languages_required"`
	CertificationRequired string   `json:"certification_required"`
}

// Clean trims all free-text fields. The create flow keeps exact duplicates
// in the list fields; the edit flow drops them (UpdateJob).
func (nj *NewJob) Clean() {
	nj.Title = core.CleanString(nj.Title)
	nj.Category = core.CleanString(nj.Category)
	nj.Location = core.CleanString(nj.Location)
	nj.Description = core.CleanString(nj.Description)
	nj.Duration = core.CleanString(nj.Duration)
	nj.ExperienceLevel = core.CleanString(nj.ExperienceLevel)
	nj.EducationRequired = core.CleanString(nj.EducationRequired)
	nj.CertificationRequired = core.CleanString(nj.CertificationRequired)
	nj.Responsibilities = core.CleanStrings(nj.Responsibilities, false)
	nj.Requirements = core.CleanStrings(nj.Requirements, false)
	nj.Benefits = core.CleanStrings(nj.Benefits, false)
	nj.Skills = core.CleanStrings(nj.Skills, false)
	nj.LanguagesRequired = core.CleanStrings(nj.LanguagesRequired, false)
	if nj.NumberOfPositions == 0 {
		nj.NumberOfPositions = 1
	}
	nj.Compensation.Normalize()
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.Clean()
	return validate.Struct(nj)
}

// UpdateJob defines what information may be provided to modify an existing Job.
// Empty scalar fields keep their original value; nil lists keep theirs.
type UpdateJob struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	LocationType string `json:"location_type" validate:"omitempty,oneof=onsite remote hybrid"`
	Location     string `json:"location"`

	Description      string   `json:"description" validate:"omitempty,max=2000"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
	Skills           []string `json:"skills"`

	Duration            string    `json:"duration"`
	Commitment          string    `json:"commitment" validate:"omitempty,oneof=full-time part-time flexible"`
	ApplicationDeadline time.Time `json:"application_deadline"`
	NumberOfPositions   int       `json:"number_of_positions" validate:"omitempty,min=1"`
	StartDate           time.Time `json:"start_date"`

	Compensation *Compensation `json:"compensation"`

	ExperienceLevel       string   `json:"experience_level"`
	EducationRequired     string   `json:"education_required"`
	LanguagesRequired     []string `json:"languages_required"`
	CertificationRequired string   `json:"certification_required"`
}

func (uj *UpdateJob) Validate(validate *validator.Validate) error {
	uj.Title = core.CleanString(uj.Title)
	uj.Category = core.CleanString(uj.Category)
	uj.Location = core.CleanString(uj.Location)
	uj.Description = core.CleanString(uj.Description)
	// edit flow suppresses exact duplicates
	uj.Responsibilities = core.CleanStrings(uj.Responsibilities, true)
	uj.Requirements = core.CleanStrings(uj.Requirements, true)
	uj.Benefits = core.CleanStrings(uj.Benefits, true)
	uj.Skills = core.CleanStrings(uj.Skills, true)
	uj.LanguagesRequired = core.CleanStrings(uj.LanguagesRequired, true)
	if uj.Compensation != nil {
		uj.Compensation.Normalize()
	}
	return validate.Struct(uj)
}

// Apply merges the update into an existing job.
func (uj UpdateJob) Apply(j Job) Job {
	if uj.Title != "" {
		j.Title = uj.Title
	}
	if uj.Category != "" {
		j.Category = uj.Category
	}
	if uj.LocationType != "" {
		j.LocationType = uj.LocationType
	}
	if uj.Location != "" {
		j.Location = uj.Location
	}
	if uj.Description != "" {
		j.Description = uj.Description
	}
	if uj.Responsibilities != nil {
		j.Responsibilities = uj.Responsibilities
	}
	if uj.Requirements != nil {
		j.Requirements = uj.Requirements
	}
	if uj.Benefits != nil {
		j.Benefits = uj.Benefits
	}
	if uj.Skills != nil {
		j.Skills = uj.Skills
	}
	if uj.Duration != "" {
		j.Duration = uj.Duration
	}
	if uj.Commitment != "" {
		j.Commitment = uj.Commitment
	}
	if !uj.ApplicationDeadline.IsZero() {
		j.ApplicationDeadline = uj.ApplicationDeadline
	}
	if uj.NumberOfPositions > 0 {
		j.NumberOfPositions = uj.NumberOfPositions
	}
	if !uj.StartDate.IsZero() {
		j.StartDate = uj.StartDate
	}
	if uj.Compensation != nil {
		j.Compensation = *uj.Compensation
	}
	if uj.ExperienceLevel != "" {
		j.ExperienceLevel = uj.ExperienceLevel
	}
	if uj.EducationRequired != "" {
		j.EducationRequired = uj.EducationRequired
	}
	if uj.LanguagesRequired != nil {
		j.LanguagesRequired = uj.LanguagesRequired
	}
	if uj.CertificationRequired != "" {
		j.CertificationRequired = uj.CertificationRequired
	}
	return j
}

type QueryFilter struct {
	Search       string    `query:"search"`
	Category     string    `query:"category"`
	LocationType string    `query:"location_type"`
	Commitment   string    `query:"commitment"`
	Status       string    `query:"status"`
	OrgID        string    `query:"org_id"`
	CreatedFrom  time.Time `query:"created_from"`
	CreatedTo    time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.LocationType == "" && qf.Commitment == "" &&
		qf.Status == "" && qf.OrgID == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.LocationType = core.CleanString(qf.LocationType, true /* lower */)
	qf.Commitment = core.CleanString(qf.Commitment, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
