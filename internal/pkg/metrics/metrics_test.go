package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordSaved("M", "create")
	m.RecordSaved("M", "create")
	m.Export("xlsx", nil)
	m.Export("pdf", errors.New("boom"))
	m.SetExpiring(2, 3, 9)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSaved.WithLabelValues("M", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsRendered.WithLabelValues("pdf", "error")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.ExpiringDocs.WithLabelValues("window")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSaved("M", "update")
		m.SMS("sent")
		m.DocumentStored()
		m.SchedulerRun(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SMS("logged")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `plakatakip_sms_total{status="logged"} 1`)
}
