// Package capacity folds per-resource workloads into a portfolio supply/demand series.
package capacity

import (
	"sort"

	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
	"github.com/shopspring/decimal"
)

type bucket struct {
	capacity  decimal.Decimal
	allocated decimal.Decimal
}

// Build returns one CapacityWeek per distinct week inside the horizon, sorted by week.
// Weeks outside the horizon never populate a bucket and are absent from the result.
func Build(workloads []types.ResourceWorkload, h workload.Horizon) []types.CapacityWeek {
	buckets := make(map[string]*bucket)
	for _, wl := range workloads {
		for _, w := range wl.Weeks {
			if !h.Contains(w.WeekStart) {
				continue
			}
			key := w.WeekKey()
			b, ok := buckets[key]
			if !ok {
				b = &bucket{}
				buckets[key] = b
			}
			b.capacity = b.capacity.Add(decimal.NewFromFloat(w.Capacity))
			b.allocated = b.allocated.Add(decimal.NewFromFloat(w.Allocated))
		}
	}

	forecast := make([]types.CapacityWeek, 0, len(buckets))
	for key, b := range buckets {
		forecast = append(forecast, newCapacityWeek(key, b))
	}

	// Week keys are YYYY-MM-DD so lexical order is chronological.
	sort.Slice(forecast, func(i, j int) bool {
		return forecast[i].Week < forecast[j].Week
	})
	return forecast
}

func newCapacityWeek(key string, b *bucket) types.CapacityWeek {
	net := b.capacity.Sub(b.allocated)
	surplus, deficit := decimal.Zero, decimal.Zero
	if net.IsPositive() {
		surplus = net
	} else {
		deficit = net.Neg()
	}
	return types.CapacityWeek{
		Week:           key,
		TotalCapacity:  b.capacity.InexactFloat64(),
		TotalAllocated: b.allocated.InexactFloat64(),
		Surplus:        surplus.InexactFloat64(),
		Deficit:        deficit.InexactFloat64(),
	}
}
