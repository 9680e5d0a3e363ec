package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/websocket"
)

type nopQueue struct{}

func (nopQueue) Enqueue(ctx context.Context, job *models.Job) error { return nil }

func newTestRouter(t *testing.T, uploads Uploads) (http.Handler, *middleware.JWTAuth) {
	t.Helper()
	store := repository.NewMemoryStore()
	jobs := repository.NewJobRepo(store)
	jwtAuth := middleware.NewJWTAuth("test-secret")
	limiter := middleware.NewRateLimiter(1)
	t.Cleanup(limiter.Stop)

	h := New(
		zap.NewNop(),
		jwtAuth,
		limiter,
		handlers.NewCourseHandler(repository.NewCourseRepo(store), jobs, nopQueue{}, 1, zap.NewNop()),
		handlers.NewJobHandler(jobs),
		websocket.NewHub(nil, jwtAuth, zap.NewNop()),
		uploads,
		"http://localhost:5173",
	)
	return h, jwtAuth
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, Uploads{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsExposed(t *testing.T) {
	h, _ := newTestRouter(t, Uploads{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "coursegen_http_requests_total")
}

func TestCoursesRequireAuth(t *testing.T) {
	h, _ := newTestRouter(t, Uploads{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGenerateIsRateLimitedPerOwner(t *testing.T) {
	h, jwtAuth := newTestRouter(t, Uploads{})
	token, err := jwtAuth.GenerateAccessToken("user_1", time.Hour)
	require.NoError(t, err)

	body := `{"title":"Intro to Python","level":"Beginner","moduleCount":2,"outputType":"summary"}`
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/generate", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusAccepted, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestListRouteIsMounted(t *testing.T) {
	h, jwtAuth := newTestRouter(t, Uploads{})
	token, err := jwtAuth.GenerateAccessToken("user_1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"courses":[],"total":0}`, rr.Body.String())
}

func TestUploadsServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "courses"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "courses", "cover.png"), []byte("png-bytes"), 0o644))
	h, _ := newTestRouter(t, Uploads{Dir: dir, Prefix: "/uploads"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/courses/cover.png", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "png-bytes", rr.Body.String())
}
