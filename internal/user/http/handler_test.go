package http

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

	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/user"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	jwt := auth.NewJWTManager("test-secret", 30*time.Minute)
	svc := user.NewService(user.NewMemoryRepository(), auth.NewBcryptPasswordHasher(4), zerolog.Nop())

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, jwt), auth.AuthRequired(jwt))
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMe(t *testing.T) {
	r := newRouter()

	w := post(r, "/v1/auth/register", RegisterRequest{Email: "clerk@example.com", Password: "password1", DisplayName: "Clerk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = post(r, "/v1/auth/register", RegisterRequest{Email: "clerk@example.com", Password: "password1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/v1/auth/register", RegisterRequest{Email: "not-an-email", Password: "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/v1/auth/login", LoginRequest{Email: "clerk@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, "/v1/auth/login", LoginRequest{Email: "clerk@example.com", Password: "password1"})
	require.Equal(t, http.StatusOK, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, 1800, login.ExpiresIn)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &resp))
	assert.Equal(t, "clerk@example.com", resp.User.Email)
	assert.NotNil(t, resp.User.LastLoginAt)

	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	me = httptest.NewRecorder()
	r.ServeHTTP(me, req)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}
