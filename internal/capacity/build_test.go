package capacity

import (
	"testing"
	"time"

	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(types.WeekKeyLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func series(capacity float64, allocated ...float64) []types.WeeklyUtilization {
	start := day("2026-01-05")
	weeks := make([]types.WeeklyUtilization, len(allocated))
	for i, a := range allocated {
		weeks[i] = types.WeeklyUtilization{
			WeekStart:   start.AddDate(0, 0, 7*i),
			Capacity:    capacity,
			Allocated:   a,
			Utilization: a / capacity * 100,
		}
	}
	return weeks
}

func TestBuild_SumsAcrossResources(t *testing.T) {
	h, err := workload.NewHorizon(day("2026-01-05"), 3)
	require.NoError(t, err)

	workloads := []types.ResourceWorkload{
		{ResourceID: "r1", Weeks: series(40, 30, 50, 0)},
		{ResourceID: "r2", Weeks: series(20, 10, 20, 25.5)},
	}

	forecast := Build(workloads, h)
	require.Len(t, forecast, 3)

	assert.Equal(t, types.CapacityWeek{Week: "2026-01-05", TotalCapacity: 60, TotalAllocated: 40, Surplus: 20}, forecast[0])
	assert.Equal(t, types.CapacityWeek{Week: "2026-01-12", TotalCapacity: 60, TotalAllocated: 70, Deficit: 10}, forecast[1])
	assert.Equal(t, types.CapacityWeek{Week: "2026-01-19", TotalCapacity: 60, TotalAllocated: 25.5, Surplus: 34.5}, forecast[2])
}

func TestBuild_SurplusDeficitInvariant(t *testing.T) {
	h, err := workload.NewHorizon(day("2026-01-05"), 5)
	require.NoError(t, err)

	workloads := []types.ResourceWorkload{
		{ResourceID: "r1", Weeks: series(37.5, 12.25, 40, 37.5, 80.1, 0)},
		{ResourceID: "r2", Weeks: series(0, 5, 0, 0, 0, 0)},
	}

	for _, week := range Build(workloads, h) {
		assert.Zero(t, week.Surplus*week.Deficit, "week %s", week.Week)
		assert.GreaterOrEqual(t, week.Surplus, 0.0)
		assert.GreaterOrEqual(t, week.Deficit, 0.0)
		assert.InDelta(t, week.TotalCapacity-week.TotalAllocated, week.Surplus-week.Deficit, 1e-9, "week %s", week.Week)
	}
}

func TestBuild_RestrictsToHorizon(t *testing.T) {
	h, err := workload.NewHorizon(day("2026-01-12"), 1)
	require.NoError(t, err)

	forecast := Build([]types.ResourceWorkload{{ResourceID: "r1", Weeks: series(40, 10, 20, 30)}}, h)
	require.Len(t, forecast, 1)
	assert.Equal(t, "2026-01-12", forecast[0].Week)
}

func TestBuild_WeeksAfterHorizonAreAbsent(t *testing.T) {
	h, err := workload.NewHorizon(day("2025-12-01"), 2)
	require.NoError(t, err)

	forecast := Build([]types.ResourceWorkload{{ResourceID: "r1", Weeks: series(40, 10, 20)}}, h)
	assert.NotNil(t, forecast)
	assert.Empty(t, forecast)
}

func TestBuild_SortedAscending(t *testing.T) {
	h, err := workload.NewHorizon(day("2026-01-05"), 4)
	require.NoError(t, err)

	weeks := series(40, 1, 2, 3, 4)
	reversed := []types.WeeklyUtilization{weeks[3], weeks[1], weeks[2], weeks[0]}
	forecast := Build([]types.ResourceWorkload{{ResourceID: "r1", Weeks: reversed}}, h)

	require.Len(t, forecast, 4)
	for i := 1; i < len(forecast); i++ {
		assert.Less(t, forecast[i-1].Week, forecast[i].Week)
	}
}
