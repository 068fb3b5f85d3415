package job

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
)

// Wizard modes
const (
	WizardModeCreate = "create" // 4 steps
	WizardModeEdit   = "edit"   // 3 steps
)

const (
	createSteps = 4
	editSteps   = 3
)

var (
	ErrDraftNotFound  = errors.New("draft not found")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrNotSubmittable = errors.New("submit is only available from the last step or preview")
	errUnknownField   = errors.New("unknown list field")
)

// Wizard sequences a job draft through a fixed number of form steps,
// gating forward navigation on per-step validity, with an orthogonal
// preview projection that never loses draft data.
//
// The draft only lives in memory: it is created empty when the wizard
// starts, mutated field by field, submitted exactly once and discarded on
// success. On failure it is retained unchanged so the caller can retry.
type Wizard struct {
	mu sync.Mutex

	ID      string
	OwnerID string
	Mode    string
	JobID   string // edit mode only

	steps       int
	currentStep int
	preview     bool
	submitting  bool
	data        NewJob

	CreatedAt time.Time
}

func NewWizard(ownerID, mode, jobID string) *Wizard {
	steps := createSteps
	if mode == WizardModeEdit {
		steps = editSteps
	}
	return &Wizard{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Mode:        mode,
		JobID:       jobID,
		steps:       steps,
		currentStep: 1,
		CreatedAt:   time.Now().UTC(),
	}
}

func (w *Wizard) Steps() int { return w.steps }

func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentStep
}

func (w *Wizard) Preview() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// Data returns a snapshot of the draft.
func (w *Wizard) Data() NewJob {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

// SetData replaces the draft's fields wholesale (a form-wide patch).
// Navigation state is untouched.
func (w *Wizard) SetData(data NewJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data = data
}

// stepValid is the guard predicate for forward navigation out of `step`.
func (w *Wizard) stepValid(step int) bool {
	switch step {
	case 1:
		return core.CleanString(w.data.Title) != "" && core.CleanString(w.data.Category) != ""
	case 2:
		return core.CleanString(w.data.Description) != ""
	default:
		return true
	}
}

// Next advances to the next step. It is a no-op when the current step's
// required fields are missing or the wizard is already on its last step;
// there is no error state for an invalid advance attempt.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentStep >= w.steps || !w.stepValid(w.currentStep) {
		return false
	}
	w.currentStep++
	return true
}

// Previous steps back, flooring at step 1. Never guarded.
func (w *Wizard) Previous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentStep <= 1 {
		return false
	}
	w.currentStep--
	return true
}

// TogglePreview flips the preview projection without losing draft data.
func (w *Wizard) TogglePreview() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview = !w.preview
	return w.preview
}

func (w *Wizard) canSubmit() bool {
	return w.preview || w.currentStep == w.steps
}

// listField returns the editor for one of the draft's tag-list fields.
// The create flow keeps exact duplicates; the edit flow suppresses them.
func (w *Wizard) listField(name string) (*ListField, func([]string), error) {
	dedup := w.Mode == WizardModeEdit
	switch name {
	case "responsibilities":
		return NewListField(dedup, w.data.Responsibilities...), func(s []string) { w.data.Responsibilities = s }, nil
	case "requirements":
		return NewListField(dedup, w.data.Requirements...), func(s []string) { w.data.Requirements = s }, nil
	case "benefits":
		return NewListField(dedup, w.data.Benefits...), func(s []string) { w.data.Benefits = s }, nil
	case "skills":
		return NewListField(dedup, w.data.Skills...), func(s []string) { w.data.Skills = s }, nil
	case "languages_required":
		return NewListField(dedup, w.data.LanguagesRequired...), func(s []string) { w.data.LanguagesRequired = s }, nil
	}
	return nil, nil, errUnknownField
}

// AddListItem appends a value to one of the draft's tag lists.
func (w *Wizard) AddListItem(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, set, err := w.listField(field)
	if err != nil {
		return err
	}
	f.Add(value)
	set(f.Items())
	return nil
}

// RemoveListItem removes the i-th value from one of the draft's tag lists.
func (w *Wizard) RemoveListItem(field string, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, set, err := w.listField(field)
	if err != nil {
		return err
	}
	f.Remove(i)
	set(f.Items())
	return nil
}

// Submit performs the terminal action through `fn` (exactly one call per
// invocation), available only from the last step or preview. A second
// concurrent submission is rejected while one is in flight. On failure the
// draft, step and preview flag are all left unchanged for a retry.
func (w *Wizard) Submit(fn func(NewJob) error) error {
	w.mu.Lock()
	if !w.canSubmit() {
		w.mu.Unlock()
		return ErrNotSubmittable
	}
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	w.submitting = true
	data := w.data
	w.mu.Unlock()

	err := fn(data)

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()
	return err
}

// DraftStore holds the live wizard sessions, keyed by draft ID.
// Drafts are never persisted and a draft belongs exclusively to the user
// who started it.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*Wizard
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*Wizard)}
}

func (s *DraftStore) Start(ownerID, mode, jobID string) *Wizard {
	w := NewWizard(ownerID, mode, jobID)
	s.mu.Lock()
	s.drafts[w.ID] = w
	s.mu.Unlock()
	return w
}

func (s *DraftStore) Get(id, ownerID string) (*Wizard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.drafts[id]
	if !ok || w.OwnerID != ownerID {
		return nil, ErrDraftNotFound
	}
	return w, nil
}

func (s *DraftStore) Delete(id, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.drafts[id]; ok && w.OwnerID == ownerID {
		delete(s.drafts, id)
	}
}
