package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	CacheHit()
	CacheHit()
	CacheMiss()

	assert.Equal(t, before+2, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done(http.MethodGet, "/api/v1/rooms", http.StatusOK)

	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/rooms", "200")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordJobRun("purge_sessions", true, 20*time.Millisecond)
	RecordNotification("email", false)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "schooldesk_jobs_runs_total")
	assert.Contains(t, body, `schooldesk_notifications_sent_total{channel="email",success="false"} 1`)
}
