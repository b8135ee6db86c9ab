package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveOperation("approve_leave_request", time.Now(), nil)
	m.ObserveOperation("approve_leave_request", time.Now(), errors.New("boom"))
	m.NotificationWritten("role", nil)
	m.SideEffectFailed(SideEffectActivity)
	m.SideEffectFailed(SideEffectActivity)
	m.SubscriptionOpened("notifications")
	m.SubscriptionOpened("notifications")
	m.SubscriptionClosed("notifications")
	m.EventDropped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("approve_leave_request", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("approve_leave_request", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("role", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sideEffectErrors.WithLabelValues(SideEffectActivity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscriptions.WithLabelValues("notifications")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", time.Now(), nil)
		m.NotificationWritten("broadcast", nil)
		m.SideEffectFailed(SideEffectEvent)
		m.SubscriptionOpened("policies")
		m.SubscriptionClosed("policies")
		m.EventDropped()
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SideEffectFailed(SideEffectNotification)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hris_dataflow_side_effect_failures_total{kind="notification"} 1`)
}
