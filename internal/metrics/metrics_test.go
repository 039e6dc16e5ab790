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
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveBootstrap(time.Now(), nil)
	m.ObserveBootstrap(time.Now(), errors.New("boom"))
	m.ClassReplaced("Aves")
	m.WeekStatCache(true)
	m.WeekStatCache(false)
	m.WeekStatCache(false)
	m.SyncAttempt("pushed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bootstrapRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bootstrapRuns.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classReplacements.WithLabelValues("Aves")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.weekStatCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncAttempts.WithLabelValues("pushed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBootstrap(time.Now(), nil)
	m.ClassReplaced("Aves")
	m.AssetFetched("species", nil)
	m.WeekStatCache(true)
	m.SyncAttempt("skipped")
	m.BackendRequest(http.MethodGet, 200)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.BackendRequest(http.MethodPost, 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "bigyear_backend_sync_requests_total"))
}
