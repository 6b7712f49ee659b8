package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GathersPlannerMetrics(t *testing.T) {
	BottlenecksTotal.WithLabelValues("severe").Inc()
	AdvisoryRequestsTotal.WithLabelValues(AdvisorySkipped).Inc()
	ForecastsTotal.WithLabelValues("project").Inc()

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["capacity_bottlenecks_total"])
	assert.True(t, names["advisory_requests_total"])
	assert.True(t, names["capacity_forecasts_total"])
}

func TestCounterVec_Increments(t *testing.T) {
	before := testutil.ToFloat64(BurnoutRisksTotal.WithLabelValues("critical"))
	BurnoutRisksTotal.WithLabelValues("critical").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(BurnoutRisksTotal.WithLabelValues("critical")))
}
