package instrumentation

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToolInvocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.RecordToolInvocation("write_email", "success", 10*time.Millisecond)
	m.RecordToolInvocation("write_email", "success", 20*time.Millisecond)
	m.RecordToolInvocation("write_email", "error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("write_email", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("write_email", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordToolInvocation("Done", "success", time.Second)
	})
}

func TestNewMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.RecordToolInvocation("Question", "success", time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `email_assistant_tool_invocations_total{status="success",tool="Question"} 1`)
}
