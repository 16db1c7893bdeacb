package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.Operation("send_message", nil)
	m.Operation("send_message", errors.New("boom"))
	m.GenerationRequest("converse", time.Now(), nil)
	m.FilesGenerated(3)
	m.StorageFault("put")
	m.SetBusy(true)

	require.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("send_message", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("send_message", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequestsTotal.WithLabelValues("converse", "ok")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.GeneratedFilesTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.StorageFaultsTotal.WithLabelValues("put")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Busy))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Operation("x", nil)
	m.SetBusy(true)
	m.GenerationRequest("x", time.Now(), nil)
	m.FilesGenerated(1)
	m.StorageFault("x")
	require.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.StorageFault("get")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "codegenesis_storage_faults_total"))
}
