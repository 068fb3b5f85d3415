package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/user"
	testutil "github.com/trezcool/hisani/tests"
)

func createVolunteer(t *testing.T, uname string) user.User {
	t.Helper()
	return testutil.CreateUser(
		t, usrRepo, "Jane Doe", uname, uname+"@test.test", "Wh0Wou!dGuess", []string{user.RoleVolunteer}, true)
}

func postJob(t *testing.T, org user.User, title string) job.Job {
	t.Helper()
	j, err := jobSvc.Create(context.Background(), org, job.NewJob{
		Title:       title,
		Category:    "Environment",
		Description: "Keep the river clean.",
	})
	require.NoError(t, err)
	return j
}

func TestJobBrowse(t *testing.T) {
	org := createNGO(t, "browseorg")
	j := postJob(t, org, "River cleanup lead")

	t.Run("public query", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/jobs?org_id="+org.ID)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var jobs []job.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, j.ID, jobs[0].ID)
	})

	t.Run("public retrieve", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/jobs/"+j.ID)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "job not found"}),
		}
		req, rec := newRequest(http.MethodGet, "/v1/jobs/4cd5ad02-3a50-4dd5-a65c-8054ee4a2f2e")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestJobWritePermissions(t *testing.T) {
	org := createNGO(t, "writeorg")
	j := postJob(t, org, "Beach cleanup lead")

	volunteer := createVolunteer(t, "writejane")
	stranger := createNGO(t, "writestranger")

	nj := marchallObj(t, job.NewJob{
		Title:       "Food bank driver",
		Category:    "Community",
		Description: "Weekly pickups.",
	})

	tests := []httpTest{
		{
			name:     "anonymous create",
			method:   http.MethodPost,
			path:     "/v1/jobs",
			body:     nj,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "volunteer create",
			method:   http.MethodPost,
			path:     "/v1/jobs",
			body:     nj,
			token:    getToken(t, volunteer),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "stranger archive",
			method:   http.MethodPatch,
			path:     "/v1/jobs/" + j.ID + "/archive",
			token:    getToken(t, stranger),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "job belongs to another organization"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("owner archive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/jobs/"+j.ID+"/archive", getToken(t, org))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var archived job.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archived))
		assert.Equal(t, job.StatusClosed, archived.Status)
	})
}

func TestApplicationFlow(t *testing.T) {
	org := createNGO(t, "training")
	j := postJob(t, org, "Workshop host")
	volunteer := createVolunteer(t, "applyjane")

	var appID string
	t.Run("apply", func(t *testing.T) {
		body := marchallObj(t, application.NewApplication{Message: "I have hosted before."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/jobs/"+j.ID+"/applications", getToken(t, volunteer), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created application.Application
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, application.StatusPending, created.Status)
		appID = created.ID
	})

	t.Run("org lists applications", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/jobs/"+j.ID+"/applications", getToken(t, org))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var apps []application.Application
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
		require.Len(t, apps, 1)
	})

	t.Run("volunteer cannot list a job's applications", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/jobs/"+j.ID+"/applications", getToken(t, volunteer))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("decide", func(t *testing.T) {
		body := marchallObj(t, application.Decision{Status: application.StatusAccepted})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/applications/"+appID, getToken(t, org), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var decided application.Application
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decided))
		assert.Equal(t, application.StatusAccepted, decided.Status)
		assert.False(t, decided.RespondedAt.IsZero())
	})

	t.Run("dashboard reflects the decision", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, org))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var d struct {
			OpenJobs          int     `json:"open_jobs"`
			TotalApplications int     `json:"total_applications"`
			AcceptanceRate    float64 `json:"acceptance_rate"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
		assert.Equal(t, 1, d.OpenJobs)
		assert.Equal(t, 1, d.TotalApplications)
		assert.Equal(t, float64(100), d.AcceptanceRate)
	})
}

func TestPlatformSettingsEndpoints(t *testing.T) {
	t.Run("public read", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/platform-settings")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var ps struct {
			SignupsOpen bool `json:"signups_open"`
			Free        struct {
				MaxActiveJobs int `json:"max_active_jobs"`
			} `json:"free"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
		assert.True(t, ps.SignupsOpen)
		assert.Equal(t, 3, ps.Free.MaxActiveJobs)
	})

	t.Run("non-admin update", func(t *testing.T) {
		org := createNGO(t, "settingsorg")
		req, rec := newAuthRequest(http.MethodPut, "/v1/platform-settings", getToken(t, org))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
