package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/hisani/apps/api/echo"
	"github.com/trezcool/hisani/core/user"
	testutil "github.com/trezcool/hisani/tests"
)

func TestUserLogin(t *testing.T) {
	usr := testutil.CreateUser(
		t, usrRepo, "Jane Doe", "loginjane", "loginjane@test.test", "Wh0Wou!dGuess", []string{user.RoleVolunteer}, true)

	inactive := testutil.CreateUser(
		t, usrRepo, "Gone Girl", "inactivegg", "inactivegg@test.test", "Wh0Wou!dGuess", []string{user.RoleVolunteer}, false)

	tests := []httpTest{
		{
			name:     "empty credentials",
			body:     marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username": "this field is required", "password": "this field is required"}`),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: usr.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "ghost", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, LoginRequest{Username: inactive.Username, Password: "Wh0Wou!dGuess"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Username: usr.Username, Password: "Wh0Wou!dGuess"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
	})
}

func TestUserRegister(t *testing.T) {
	t.Run("volunteer signup", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "John Roe",
			Username:        "johnroe",
			Email:           "johnroe@test.test",
			Password:        "Wh0Wou!dGuess",
			PasswordConfirm: "Wh0Wou!dGuess",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, []string{user.RoleVolunteer}, created.Roles)
		assert.Equal(t, user.PlanFree, created.Plan)
	})

	t.Run("admin role refused", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "Sneaky Pete",
			Username:        "sneakypete",
			Email:           "sneakypete@test.test",
			Password:        "Wh0Wou!dGuess",
			PasswordConfirm: "Wh0Wou!dGuess",
			Roles:           []string{user.RoleAdmin},
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

func TestUserQueryPermissions(t *testing.T) {
	volunteer := testutil.CreateUser(
		t, usrRepo, "Jane Doe", "queryjane", "queryjane@test.test", "Wh0Wou!dGuess", []string{user.RoleVolunteer}, true)

	tests := []httpTest{
		{
			name:     "anonymous",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "non-admin",
			token:    getToken(t, volunteer),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("admin", func(t *testing.T) {
		admin := testutil.CreateUser(
			t, usrRepo, "Root", "rootadmin", "rootadmin@test.test", "Wh0Wou!dGuess", []string{user.RoleAdmin}, true)
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.NotEmpty(t, users)
	})
}
