package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecording(t *testing.T) {
	m := New()

	m.ObserveBootstrap("authenticated")
	m.ObserveCommit(nil)
	m.ObserveCommit(errors.New("disk full"))
	m.ObserveClear(nil)
	m.IncrementStoreError("get")
	m.ObserveAPIRequest("student", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionBootstraps.WithLabelValues("authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionCommits.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionCommits.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionClears.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("get")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.APIRequestDuration))
}

func TestNewIsolatesRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := New()
	b := New()
	a.ObserveCommit(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionCommits.WithLabelValues("success")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveBootstrap("anonymous")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "guardian_session_bootstraps_total"))
}
