package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/hisani/apps/api/echo"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/user"
	testutil "github.com/trezcool/hisani/tests"
)

func createNGO(t *testing.T, uname string) user.User {
	t.Helper()
	return testutil.CreateUser(
		t, usrRepo, "Helping Hands", uname, uname+"@test.test", "Wh0Wou!dGuess", []string{user.RoleNGO}, true)
}

func startDraft(t *testing.T, token, mode, jobID string) DraftResponse {
	t.Helper()
	body := marchallObj(t, StartDraftRequest{Mode: mode, JobID: jobID})
	req, rec := newAuthRequest(http.MethodPost, "/v1/jobs/drafts", token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var draft DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	return draft
}

func putDraftData(t *testing.T, token string, draftID string, data job.NewJob) DraftResponse {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPut, "/v1/jobs/drafts/"+draftID, token, marchallObj(t, data))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var draft DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	return draft
}

func postDraftAction(t *testing.T, token, draftID, action string) (int, DraftResponse) {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/jobs/drafts/%s/%s", draftID, action), token)
	app.ServeHTTP(rec, req)

	var draft DraftResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &draft)
	return rec.Code, draft
}

func TestDraftWizardCreateFlow(t *testing.T) {
	org := createNGO(t, "wizardorg")
	token := getToken(t, org)

	draft := startDraft(t, token, job.WizardModeCreate, "")
	assert.Equal(t, 4, draft.Steps)
	assert.Equal(t, 1, draft.Step)

	// an empty draft cannot leave step 1
	code, draft := postDraftAction(t, token, draft.ID, "next")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, draft.Step)

	data := job.NewJob{
		Title:    "Community garden coordinator",
		Category: "Environment",
	}
	putDraftData(t, token, draft.ID, data)
	code, draft = postDraftAction(t, token, draft.ID, "next")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, draft.Step)

	// step 2 requires a description
	code, draft = postDraftAction(t, token, draft.ID, "next")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, draft.Step)

	data.Description = "Run the weekly garden sessions."
	data.Skills = []string{"Gardening", "Scheduling"}
	putDraftData(t, token, draft.ID, data)
	code, draft = postDraftAction(t, token, draft.ID, "next")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, draft.Step)

	code, draft = postDraftAction(t, token, draft.ID, "next")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, draft.Step)

	// submit from the last step creates the job
	req, rec := newAuthRequest(http.MethodPost, "/v1/jobs/drafts/"+draft.ID+"/submit", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created job.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, data.Title, created.Title)
	assert.Equal(t, org.ID, created.OrgID)
	assert.Equal(t, job.StatusOpen, created.Status)

	// the draft is discarded on success
	req, rec = newAuthRequest(http.MethodGet, "/v1/jobs/drafts/"+draft.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDraftSubmitQuotaExceeded(t *testing.T) {
	org := createNGO(t, "quotaorg")
	token := getToken(t, org)
	ctx := context.Background()

	// fill the free plan's 3 active job slots
	for i := 0; i < 3; i++ {
		_, err := jobSvc.Create(ctx, org, job.NewJob{
			Title:       fmt.Sprintf("Posting %d", i+1),
			Category:    "Environment",
			Description: "Keep the river clean.",
		})
		require.NoError(t, err)
	}

	draft := startDraft(t, token, job.WizardModeCreate, "")
	data := job.NewJob{
		Title:       "One posting too many",
		Category:    "Environment",
		Description: "This should hit the quota gate.",
	}
	putDraftData(t, token, draft.ID, data)

	// preview makes the draft submittable from any step
	code, _ := postDraftAction(t, token, draft.ID, "preview")
	require.Equal(t, http.StatusOK, code)

	req, rec := newAuthRequest(http.MethodPost, "/v1/jobs/drafts/"+draft.ID+"/submit", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "quota exceeded", body.Error)
	assert.Contains(t, body.Message, "upgrade")

	// the draft survives the failed submit for a retry
	req, rec = newAuthRequest(http.MethodGet, "/v1/jobs/drafts/"+draft.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var kept DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kept))
	assert.Equal(t, data.Title, kept.Data.Title)
	assert.True(t, kept.Preview)
}

func TestDraftOwnership(t *testing.T) {
	org := createNGO(t, "draftowner")
	token := getToken(t, org)
	draft := startDraft(t, token, job.WizardModeCreate, "")

	intruder := createNGO(t, "draftintruder")
	req, rec := newAuthRequest(http.MethodGet, "/v1/jobs/drafts/"+draft.ID, getToken(t, intruder))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// volunteers have no business in the posting wizard
	volunteer := testutil.CreateUser(
		t, usrRepo, "Jane Doe", "draftjane", "draftjane@test.test", "Wh0Wou!dGuess", []string{user.RoleVolunteer}, true)
	req, rec = newAuthRequest(http.MethodPost, "/v1/jobs/drafts", getToken(t, volunteer),
		marchallObj(t, StartDraftRequest{Mode: job.WizardModeCreate}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
