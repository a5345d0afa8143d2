package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var testOrigins = []string{"https://app.example.com", "https://www.example.com"}

func newCORSTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(testOrigins))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
	return r
}

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	r := newCORSTestRouter()

	for _, origin := range testOrigins {
		w := corsRequest(r, http.MethodGet, origin)
		assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORS_DisallowedOriginGetsFallback(t *testing.T) {
	r := newCORSTestRouter()

	w := corsRequest(r, http.MethodGet, "https://evil.example.net")
	// An unknown origin must never see itself reflected; the first
	// configured origin is the fixed fallback.
	assert.Equal(t, testOrigins[0], w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginGetsFallback(t *testing.T) {
	r := newCORSTestRouter()

	w := corsRequest(r, http.MethodGet, "")
	assert.Equal(t, testOrigins[0], w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	r := newCORSTestRouter()

	w := corsRequest(r, http.MethodOptions, testOrigins[1])
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, testOrigins[1], w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_HeadersOnActualResponse(t *testing.T) {
	r := newCORSTestRouter()

	w := corsRequest(r, http.MethodGet, testOrigins[0])
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
}
