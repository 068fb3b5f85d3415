package job

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardStepGates(t *testing.T) {
	w := NewWizard("org1", WizardModeCreate, "")
	require.Equal(t, 4, w.Steps())
	require.Equal(t, 1, w.CurrentStep())

	// step 1 gate: title and category both required
	assert.False(t, w.Next())
	w.SetData(NewJob{Title: "Beach cleanup lead"})
	assert.False(t, w.Next())
	w.SetData(NewJob{Title: "Beach cleanup lead", Category: "Environment"})
	assert.True(t, w.Next())
	assert.Equal(t, 2, w.CurrentStep())

	// step 2 gate: description required; whitespace does not count
	data := w.Data()
	data.Description = "   "
	w.SetData(data)
	assert.False(t, w.Next())
	data.Description = "Coordinate weekend shoreline cleanups."
	w.SetData(data)
	assert.True(t, w.Next())
	assert.Equal(t, 3, w.CurrentStep())

	// steps 3+ are unguarded
	assert.True(t, w.Next())
	assert.Equal(t, 4, w.CurrentStep())
	assert.False(t, w.Next()) // already on the last step

	// Previous floors at 1
	for i := 0; i < 10; i++ {
		w.Previous()
	}
	assert.Equal(t, 1, w.CurrentStep())
}

func TestWizardEditModeStepCount(t *testing.T) {
	w := NewWizard("org1", WizardModeEdit, "job1")
	require.Equal(t, 3, w.Steps())

	w.SetData(NewJob{Title: "T", Category: "C", Description: "D"})
	assert.True(t, w.Next())
	assert.True(t, w.Next())
	assert.Equal(t, 3, w.CurrentStep())
	assert.False(t, w.Next())
}

func TestWizardPreviewPreservesDraft(t *testing.T) {
	w := NewWizard("org1", WizardModeCreate, "")
	data := NewJob{
		Title:       "Tutor",
		Category:    "Education",
		Description: "Weekly math tutoring.",
		Skills:      []string{"Math", "Patience"},
	}
	w.SetData(data)
	w.Next()
	w.Next()

	assert.True(t, w.TogglePreview())
	assert.Equal(t, data, w.Data())
	assert.Equal(t, 3, w.CurrentStep()) // step untouched

	assert.False(t, w.TogglePreview())
	assert.Equal(t, data, w.Data())
}

func TestWizardSubmit(t *testing.T) {
	newReady := func() *Wizard {
		w := NewWizard("org1", WizardModeCreate, "")
		w.SetData(NewJob{Title: "T", Category: "C", Description: "D"})
		for w.Next() {
		}
		return w
	}

	t.Run("not submittable before the last step", func(t *testing.T) {
		w := NewWizard("org1", WizardModeCreate, "")
		w.SetData(NewJob{Title: "T", Category: "C", Description: "D"})
		w.Next() // step 2
		err := w.Submit(func(NewJob) error { return nil })
		assert.Equal(t, ErrNotSubmittable, err)
	})

	t.Run("submittable from preview on any step", func(t *testing.T) {
		w := NewWizard("org1", WizardModeCreate, "")
		w.SetData(NewJob{Title: "T", Category: "C", Description: "D"})
		w.TogglePreview()
		var calls int
		require.NoError(t, w.Submit(func(NewJob) error { calls++; return nil }))
		assert.Equal(t, 1, calls)
	})

	t.Run("exactly one call per invocation", func(t *testing.T) {
		w := newReady()
		var calls int
		require.NoError(t, w.Submit(func(NewJob) error { calls++; return nil }))
		assert.Equal(t, 1, calls)
	})

	t.Run("draft preserved on failure", func(t *testing.T) {
		w := newReady()
		before := w.Data()
		err := w.Submit(func(NewJob) error { return errors.New("server exploded") })
		require.Error(t, err)
		assert.Equal(t, before, w.Data())
		assert.Equal(t, w.Steps(), w.CurrentStep())

		// and a retry goes through
		require.NoError(t, w.Submit(func(NewJob) error { return nil }))
	})

	t.Run("concurrent double submit is rejected", func(t *testing.T) {
		w := newReady()
		started := make(chan struct{})
		release := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		var firstErr error
		go func() {
			defer wg.Done()
			firstErr = w.Submit(func(NewJob) error {
				close(started)
				<-release
				return nil
			})
		}()

		<-started
		err := w.Submit(func(NewJob) error { return nil })
		assert.Equal(t, ErrSubmitInFlight, err)

		close(release)
		wg.Wait()
		assert.NoError(t, firstErr)
	})
}

func TestWizardListFields(t *testing.T) {
	t.Run("create mode keeps duplicates", func(t *testing.T) {
		w := NewWizard("org1", WizardModeCreate, "")
		require.NoError(t, w.AddListItem("skills", " First Aid "))
		require.NoError(t, w.AddListItem("skills", "First Aid"))
		assert.Equal(t, []string{"First Aid", "First Aid"}, w.Data().Skills)
	})

	t.Run("edit mode suppresses duplicates", func(t *testing.T) {
		w := NewWizard("org1", WizardModeEdit, "job1")
		require.NoError(t, w.AddListItem("requirements", "Driver's license"))
		require.NoError(t, w.AddListItem("requirements", "Driver's license"))
		require.NoError(t, w.AddListItem("requirements", "Weekends"))
		assert.Equal(t, []string{"Driver's license", "Weekends"}, w.Data().Requirements)
	})

	t.Run("remove by index preserves order", func(t *testing.T) {
		w := NewWizard("org1", WizardModeCreate, "")
		for _, b := range []string{"Lunch", "Transport", "Certificate"} {
			require.NoError(t, w.AddListItem("benefits", b))
		}
		require.NoError(t, w.RemoveListItem("benefits", 1))
		assert.Equal(t, []string{"Lunch", "Certificate"}, w.Data().Benefits)
	})

	t.Run("unknown field", func(t *testing.T) {
		w := NewWizard("org1", WizardModeCreate, "")
		assert.Error(t, w.AddListItem("nope", "x"))
	})
}

func TestDraftStoreOwnership(t *testing.T) {
	s := NewDraftStore()
	w := s.Start("org1", WizardModeCreate, "")

	got, err := s.Get(w.ID, "org1")
	require.NoError(t, err)
	assert.Same(t, w, got)

	_, err = s.Get(w.ID, "org2")
	assert.Equal(t, ErrDraftNotFound, err)

	// a non-owner delete is a no-op
	s.Delete(w.ID, "org2")
	_, err = s.Get(w.ID, "org1")
	require.NoError(t, err)

	s.Delete(w.ID, "org1")
	_, err = s.Get(w.ID, "org1")
	assert.Equal(t, ErrDraftNotFound, err)
}
