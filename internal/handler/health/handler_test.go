package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func setup(checks map[string]Check, g prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	NewHandler(checks, g).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func get(e *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := get(setup(nil, nil), "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := get(setup(map[string]Check{"api": up}, nil), "/api/v1/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(setup(map[string]Check{"api": up, "broker": down}, nil), "/api/v1/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","checks":{"broker":"connection refused"}}`, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "dash_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	w := get(setup(nil, reg), "/api/v1/health/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dash_test_total 1")

	assert.Equal(t, http.StatusNotFound, get(setup(nil, nil), "/api/v1/health/metrics").Code)
}
