package application

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hisani/core"
)

// Status values mirror the application's lifecycle.
//
// Valid status graph:
//
//	pending ──► accepted
//	    │
//	    ├─────► rejected
//	    │
//	    └─────► withdrawn
//
// accepted, rejected and withdrawn are terminal states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusRejected, StatusWithdrawn},
	// accepted, rejected and withdrawn are terminal: no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state, no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsDecision returns true when status is an org-side decision.
func IsDecision(s Status) bool { return s == StatusAccepted || s == StatusRejected }

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	VolunteerID string    `json:"volunteer_id"`
	Message     string    `json:"message"`
	Status      Status    `json:"status"`
	Rating      *int      `json:"rating,omitempty"` // org's 1..5 rating, set on decision
	CreatedAt   time.Time `json:"created_at"`       // UTC
	RespondedAt time.Time `json:"responded_at"`     // UTC; zero until decided
}

// ResponseDays returns how long the org took to decide, in days.
// It returns 0 and false for undecided applications.
func (a *Application) ResponseDays() (float64, bool) {
	if a.RespondedAt.IsZero() {
		return 0, false
	}
	return a.RespondedAt.Sub(a.CreatedAt).Hours() / 24, true
}

// NewApplication contains information needed to apply to a job.
type NewApplication struct {
	JobID   string `json:"job_id" validate:"required"`
	Message string `json:"message" validate:"max=2000"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.JobID = core.CleanString(na.JobID)
	na.Message = core.CleanString(na.Message)
	return validate.Struct(na)
}

// Decision is the org's verdict on a pending application.
type Decision struct {
	Status Status `json:"status" validate:"required,oneof=accepted rejected"`
	Rating *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (d *Decision) Validate(validate *validator.Validate) error {
	return validate.Struct(d)
}

type QueryFilter struct {
	JobID       string    `query:"job_id"`
	VolunteerID string    `query:"volunteer_id"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.JobID == "" && qf.VolunteerID == "" && qf.Status == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.JobID = core.CleanString(qf.JobID)
	qf.VolunteerID = core.CleanString(qf.VolunteerID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
