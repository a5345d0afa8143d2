package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonauth "reno_server/server/common/auth"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *commonauth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := commonauth.NewService("middleware-test-secret", time.Hour, false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", AuthRequired(svc), func(c *gin.Context) {
		userID, email, ok := Principal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "email": email})
	})
	return r, svc
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", errorBody(t, w)["error"])
}

func TestAuthRequired_NotBearer(t *testing.T) {
	r, svc := newAuthTestRouter(t)
	token, err := svc.Issue("user_1", "a@b.com")
	require.NoError(t, err)

	for _, header := range []string{"Token " + token, token, "bearer " + token, "Bearer"} {
		w := doRequest(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Equal(t, "No token provided", errorBody(t, w)["error"], "header %q", header)
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := doRequest(r, "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errorBody(t, w)["error"])
}

func TestAuthRequired_ValidToken(t *testing.T) {
	r, svc := newAuthTestRouter(t)
	token, err := svc.Issue("user_1", "a@b.com")
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	body := errorBody(t, w)
	assert.Equal(t, "user_1", body["userId"])
	assert.Equal(t, "a@b.com", body["email"])
}

func TestAuthRequired_HeaderCaseInsensitive(t *testing.T) {
	r, svc := newAuthTestRouter(t)
	token, err := svc.Issue("user_1", "a@b.com")
	require.NoError(t, err)

	// Header names canonicalize regardless of the casing the client sent.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
