package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromCounters(t *testing.T) {
	p := NewProm("test")

	p.AddObjectsScanned(500)
	p.AddObjectsScanned(20)
	p.AddObjectsDeleted(3, false)
	p.AddObjectsDeleted(2, true)
	p.IncArtifacts("pruned")
	p.IncArtifacts("pruned")
	p.IncArtifacts("incomplete")
	p.ObserveRun("ok", 1.5)

	assert.Equal(t, 520.0, testutil.ToFloat64(p.objectsScanned))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.objectsDeleted.WithLabelValues("delete")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.objectsDeleted.WithLabelValues("dry_run")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.artifacts.WithLabelValues("pruned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.artifacts.WithLabelValues("incomplete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("ok")))
}

func TestPromRegistriesAreIndependent(t *testing.T) {
	a := NewProm("test")
	b := NewProm("test")

	a.AddObjectsScanned(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.objectsScanned))
}

func TestHandlerServesMetrics(t *testing.T) {
	p := NewProm("cleaner")
	p.IncArtifacts("pruned")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cleaner_artifacts_total{outcome="pruned"} 1`)
}

func TestNoopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Noop{}
	r.AddObjectsScanned(1)
	r.ObserveRun("ok", 0)
}
