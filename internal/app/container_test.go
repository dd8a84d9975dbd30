package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-docket-backend/internal/app"
	clientHttp "github.com/nekogravitycat/court-docket-backend/internal/client/http"
	"github.com/nekogravitycat/court-docket-backend/internal/config"
	hearingHttp "github.com/nekogravitycat/court-docket-backend/internal/hearing/http"
	caseHttp "github.com/nekogravitycat/court-docket-backend/internal/legalcase/http"
	userHttp "github.com/nekogravitycat/court-docket-backend/internal/user/http"
)

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := app.NewContainer(app.Config{
		Logger:         zerolog.Nop(),
		Backend:        config.BackendMemory,
		JWTSecret:      "test-secret",
		JWTTTL:         30 * time.Minute,
		BcryptCost:     4, // Lower cost for testing purposes
		ConflictScopes: "courtroom,counsel",
		TimezoneMode:   "fixed",
	})
	require.NoError(t, err)
	return c
}

func executeRequest(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewContainer_BackendErrors(t *testing.T) {
	_, err := app.NewContainer(app.Config{Backend: config.BackendPostgres, Logger: zerolog.Nop()})
	assert.Error(t, err)

	_, err = app.NewContainer(app.Config{Backend: config.BackendMongo, Logger: zerolog.Nop()})
	assert.Error(t, err)

	_, err = app.NewContainer(app.Config{Backend: "sqlite", Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	c := newTestContainer(t)

	w := executeRequest(c.Router, "GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDocketFlow(t *testing.T) {
	c := newTestContainer(t)
	router := c.Router
	day := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")

	var token, caseID, firstID string

	t.Run("Register and Login", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/auth/register", userHttp.RegisterRequest{
			Email:    "advocate@chambers.in",
			Password: "correct-horse",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)

		w = executeRequest(router, "POST", "/v1/auth/login", userHttp.LoginRequest{
			Email:    "advocate@chambers.in",
			Password: "correct-horse",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp userHttp.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.AccessToken)
		token = resp.AccessToken
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := executeRequest(router, "GET", "/v1/hearings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Register Client", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/clients", clientHttp.CreateClientRequest{
			Name:  "Meera Iyer",
			Email: "meera@example.in",
			Phone: "+91 98400 12345",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		w = executeRequest(router, "GET", "/v1/clients", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Create Case", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/cases", caseHttp.CreateCaseRequest{
			CaseNumber: "WP-118/2025",
			ClientName: "Meera Iyer",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp caseHttp.CaseResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		caseID = resp.ID
	})

	body := func(clock string) map[string]any {
		return map[string]any{
			"case_id":        caseID,
			"court_name":     "Madras High Court",
			"hearing_date":   day,
			"hearing_time":   clock,
			"resource_scope": map[string]any{"courtroom_id": "court-12"},
		}
	}

	t.Run("Create Hearing", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/hearings", body("10:30"), token)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp hearingHttp.HearingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "scheduled", resp.Status)
		assert.Equal(t, 60, resp.Duration)
		require.NotNil(t, resp.StartAt)
		// 10:30 in Kolkata is 05:00 UTC.
		assert.Equal(t, 5, resp.StartAt.UTC().Hour())
		firstID = resp.ID
	})

	t.Run("Overlapping Hearing Is Rejected", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/hearings", body("11:00"), token)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp hearingHttp.ConflictErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Conflicts, 1)
		assert.Equal(t, firstID, resp.Conflicts[0].HearingID)
		assert.Equal(t, "WP-118/2025", resp.Conflicts[0].CaseNumber)
		assert.Equal(t, []string{"courtroom"}, resp.Conflicts[0].ResourceScope)
	})

	t.Run("Back To Back Hearing Is Accepted", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/hearings", body("11:30"), token)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Dry Run Reports Conflict", func(t *testing.T) {
		w := executeRequest(router, "POST", "/v1/hearings/conflicts/check", body("10:45"), token)
		require.Equal(t, http.StatusOK, w.Code)

		var resp hearingHttp.CheckConflictsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.NotEmpty(t, resp.Conflicts)
	})

	t.Run("Deleting Case Removes Hearings", func(t *testing.T) {
		w := executeRequest(router, "DELETE", "/v1/cases/"+caseID, nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = executeRequest(router, "GET", "/v1/hearings/"+firstID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
