package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/directory-admin/internal/notify"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
	"github.com/jwalitptl/directory-admin/pkg/httputil"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestRequestIDPropagates(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, notify.RequestID(c.Request.Context()))
	})

	w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	w = serve(e, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestErrorHandlerIncludesToasts(t *testing.T) {
	e := gin.New()
	e.Use(RequestID(), Toasts(), ErrorHandler(nil))
	e.POST("/", func(c *gin.Context) {
		notify.Collecting{}.NotifyError(c.Request.Context(), "Name is required.")
		_ = c.Error(apperrors.NewValidation("Name is required."))
	})

	w := serve(e, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success bool           `json:"success"`
		Error   httputil.Error `json:"error"`
		Toasts  []notify.Toast `json:"toasts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Name is required.", body.Error.Message)
	assert.NotEmpty(t, body.Error.RequestID)
	require.Len(t, body.Toasts, 1)
	assert.Equal(t, "error", body.Toasts[0].Level)
}

func TestRecovery(t *testing.T) {
	e := gin.New()
	e.Use(Recovery(nil))
	e.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://admin.example.com"}
	e := gin.New()
	e.Use(CORS(cfg))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := serve(e, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderXConfirm)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(e, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 2})
	e := gin.New()
	e.Use(rl.RateLimit())
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(e, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestSizeLimit(t *testing.T) {
	e := gin.New()
	e.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8, MaxUploadSize: 64, ErrorMessage: "too big"}))
	e.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asthma"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asthma"}`))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

type httpRec struct {
	mu     sync.Mutex
	routes []string
}

func (r *httpRec) ObserveHTTP(method, route, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route+" "+status)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	rec := &httpRec{}
	e := gin.New()
	e.Use(Metrics(rec))
	e.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(e, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, []string{"GET /items/:id 200", "GET unmatched 404"}, rec.routes)
}
