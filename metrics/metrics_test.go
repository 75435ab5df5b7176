package metrics

import (
	// Go Internal Packages
	"testing"

	// External Packages
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New("paygate", reg)
	require.NoError(t, err)

	m.ObserveOutcome("post", "ok")
	m.ObserveOutcome("post", "ok")
	m.ObserveOutcome("post", "not posted")
	m.ObserveDeadLetters(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("post", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("post", "not posted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dead))

	_, err = New("paygate", reg)
	assert.Error(t, err, "collectors cannot be registered twice")
}
