package datadog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/metrics"
)

func TestNewBackendRequiresAddr(t *testing.T) {
	b, err := NewBackend(Config{})
	assert.Error(t, err)
	assert.Nil(t, b)
}

func TestBackendSendsOverUDP(t *testing.T) {
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", GlobalTags: []string{"env:test"}})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		b.IncCounter(metrics.RowsTotal, 3, metrics.Labels{"kind": "inserted"})
		b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "prune"})
		// nothing listens on the port; delivery errors are not ours to assert
		_ = b.Flush()
	})
}

func TestLabelsToTags(t *testing.T) {
	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t,
		[]string{"job:chidata", "status:success", "step:prune"},
		labelsToTags(metrics.Labels{"step": "prune", "status": "success", "job": "chidata"}))
}

func TestZeroBackendIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	assert.NoError(t, b.Flush())
}
