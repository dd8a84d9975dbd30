package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-docket-backend/internal/hearing"
	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/lock"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
)

type testEnv struct {
	router *gin.Engine
	caseID string
	day    string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := hearing.NewMemoryRepository()
	cases := legalcase.NewService(legalcase.NewMemoryRepository(), repo)
	scanner := hearing.NewScanner(repo, cases, hearing.ScannerConfig{Scopes: hearing.ParseScopes("")}, zerolog.Nop())
	svc := hearing.NewService(repo, cases, scanner, lock.NewLocalLocker(), hearing.FixedOffsetResolver{}, zerolog.Nop())

	c, err := cases.Create(context.Background(), "user-1", legalcase.CreateRequest{CaseNumber: "CS-7/2024", ClientName: "A. Rao"})
	require.NoError(t, err)

	// Stand-in for JWT auth: the caller names itself.
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-User"))
		c.Next()
	}
	noLimit := func(c *gin.Context) { c.Next() }

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth, noLimit)

	return &testEnv{
		router: r,
		caseID: c.ID,
		day:    time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02"),
	}
}

func (e *testEnv) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) hearingBody(clock, courtroom string) map[string]any {
	return map[string]any{
		"case_id":        e.caseID,
		"court_name":     "Bombay High Court",
		"hearing_date":   e.day,
		"hearing_time":   clock,
		"resource_scope": map[string]any{"courtroom_id": courtroom},
	}
}

func TestCreateAndGetHearing(t *testing.T) {
	env := setup(t)

	w := env.do(http.MethodPost, "/v1/hearings", "user-1", env.hearingBody("11:00", "C1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created HearingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "11:00", created.HearingTime)
	assert.Equal(t, "Asia/Kolkata", created.Timezone)
	assert.Equal(t, "C1", created.ResourceScope.CourtroomID)
	require.NotNil(t, created.Case)
	assert.Equal(t, "CS-7/2024", created.Case.CaseNumber)
	require.NotNil(t, created.StartAt)
	assert.Equal(t, time.Hour, created.EndAt.Sub(*created.StartAt))

	w = env.do(http.MethodGet, "/v1/hearings/"+created.ID, "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/hearings/"+created.ID, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/v1/hearings/not-a-uuid", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/v1/hearings/case/"+env.caseID, "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list response.ListResponse[HearingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestCreateHearingConflict(t *testing.T) {
	env := setup(t)

	w := env.do(http.MethodPost, "/v1/hearings", "user-1", env.hearingBody("11:00", "C1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first HearingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = env.do(http.MethodPost, "/v1/hearings", "user-1", env.hearingBody("11:30", "C1"))
	require.Equal(t, http.StatusConflict, w.Code)

	var clash ConflictErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clash))
	require.Len(t, clash.Conflicts, 1)
	assert.Equal(t, first.ID, clash.Conflicts[0].HearingID)
	assert.Equal(t, "Same courtroom", clash.Conflicts[0].ConflictReason)
	assert.Equal(t, []string{"courtroom"}, clash.Conflicts[0].ResourceScope)

	body := env.hearingBody("11:30", "C1")
	body["conflict_override"] = map[string]any{"allowed": true, "reason": "Urgent mention"}
	w = env.do(http.MethodPost, "/v1/hearings", "user-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var overridden HearingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overridden))
	assert.True(t, overridden.ConflictOverride.Allowed)
	assert.Equal(t, []string{first.ID}, overridden.ConflictOverride.ConflictingHearings)
}

func TestCreateHearingRejectsBadInput(t *testing.T) {
	env := setup(t)

	body := env.hearingBody("11:00", "")
	delete(body, "court_name")
	w := env.do(http.MethodPost, "/v1/hearings", "user-1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = env.hearingBody("11:00", "")
	body["status"] = "postponed"
	w = env.do(http.MethodPost, "/v1/hearings", "user-1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = map[string]any{
		"case_id":    env.caseID,
		"court_name": "Bombay High Court",
		"start_at":   "2020-01-01T10:00:00Z",
		"end_at":     "2020-01-01T09:00:00Z",
	}
	w = env.do(http.MethodPost, "/v1/hearings", "user-1", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Details, "endAt must be after startAt")
	assert.Contains(t, errResp.Details, "Hearing date cannot be in the past while status is scheduled")
}

func TestCheckConflictsEndpoint(t *testing.T) {
	env := setup(t)

	w := env.do(http.MethodPost, "/v1/hearings", "user-1", env.hearingBody("11:00", "C1"))
	require.Equal(t, http.StatusCreated, w.Code)

	check := map[string]any{
		"hearing_date":   env.day,
		"hearing_time":   "11:45",
		"resource_scope": map[string]any{"courtroom_id": "C1"},
	}
	w = env.do(http.MethodPost, "/v1/hearings/conflicts/check", "user-1", check)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res CheckConflictsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Conflicts, 1)
	assert.Equal(t, "courtroom,counsel", res.Scopes)

	w = env.do(http.MethodPost, "/v1/hearings/conflicts/check", "user-1", map[string]any{"start_at": "whenever"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Invalid startAt date")

	// Still only the one saved hearing.
	w = env.do(http.MethodGet, "/v1/hearings", "user-1", nil)
	var list response.ListResponse[HearingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestUpdateAndDeleteHearing(t *testing.T) {
	env := setup(t)

	w := env.do(http.MethodPost, "/v1/hearings", "user-1", env.hearingBody("11:00", ""))
	require.Equal(t, http.StatusCreated, w.Code)
	var created HearingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(http.MethodPatch, "/v1/hearings/"+created.ID, "user-1", map[string]any{
		"status":             "adjourned",
		"adjournment_reason": "Judge on leave",
		"documents_to_bring": []string{"vakalatnama"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated HearingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "adjourned", updated.Status)
	assert.Equal(t, "Judge on leave", updated.AdjournmentReason)
	assert.Equal(t, []string{"vakalatnama"}, updated.DocumentsToBring)

	w = env.do(http.MethodDelete, "/v1/hearings/"+created.ID, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, "/v1/hearings/"+created.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/v1/hearings/"+created.ID, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
