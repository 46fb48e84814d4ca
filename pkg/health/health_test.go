package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProbeRouter(h *Health) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/livez", h.LiveEndpoint)
	r.GET("/readyz", h.ReadyEndpoint)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadyEndpoint_NotReadyUntilMarked(t *testing.T) {
	h := New()
	r := newProbeRouter(h)

	w := get(r, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "service is not ready")

	h.SetReady(true)
	w = get(r, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)
	w = get(r, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFailureThreshold(t *testing.T) {
	c := &check{name: "db", timeout: time.Second, fn: func(context.Context) error {
		return errors.New("connection refused")
	}}
	c.healthy.Store(true)

	// One or two consecutive failures keep the check healthy.
	c.run(context.Background())
	c.run(context.Background())
	assert.True(t, c.healthy.Load())

	// The third flips it.
	c.run(context.Background())
	assert.False(t, c.healthy.Load())

	// A single success restores it.
	c.fn = func(context.Context) error { return nil }
	c.run(context.Background())
	assert.True(t, c.healthy.Load())
}

func TestLiveEndpoint_ReportsFailingCheck(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, func(context.Context) error {
		return errors.New("too many goroutines")
	})
	r := newProbeRouter(h)

	// Probes start healthy until the threshold is crossed.
	w := get(r, "/livez")
	require.Equal(t, http.StatusOK, w.Code)

	for range failureThreshold {
		h.liveness[0].run(context.Background())
	}

	w = get(r, "/livez")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "too many goroutines")
}

func TestIsReady_RequiresPassingChecks(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, func(context.Context) error {
		return errors.New("down")
	})
	h.SetReady(true)

	assert.True(t, h.IsReady())

	for range failureThreshold {
		h.readiness[0].run(context.Background())
	}
	assert.False(t, h.IsReady())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck("db", func(context.Context) error { return nil })
	assert.NoError(t, ok(context.Background()))

	down := PingCheck("db", func(context.Context) error { return errors.New("refused") })
	err := down(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping db")
}
