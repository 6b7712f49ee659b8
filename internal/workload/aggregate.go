package workload

import (
	"fmt"

	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate builds one ResourceWorkload per resource over the horizon, in roster order.
// Resources without assignments get all-zero weeks. Any assignment that fails validation
// or references a resource missing from the roster aborts the whole aggregation.
func Aggregate(resources []types.Resource, assignments []types.Assignment, h Horizon) ([]types.ResourceWorkload, error) {
	if h.Weeks <= 0 {
		return nil, &InputError{Field: "weeks_ahead", Message: fmt.Sprintf("must be a positive integer, got %d", h.Weeks)}
	}

	byResource, err := GroupByResource(resources, assignments)
	if err != nil {
		return nil, err
	}

	workloads := make([]types.ResourceWorkload, 0, len(resources))
	for _, resource := range resources {
		workloads = append(workloads, Project(resource, byResource[resource.ID], h))
	}
	return workloads, nil
}

// GroupByResource validates assignments and indexes them by resource id.
func GroupByResource(resources []types.Resource, assignments []types.Assignment) (map[string][]types.Assignment, error) {
	known := make(map[string]bool, len(resources))
	for _, r := range resources {
		if r.ID == "" {
			return nil, &RecordError{Message: fmt.Sprintf("resource %q has no id", r.Name)}
		}
		if r.CapacityHoursPerWeek < 0 {
			return nil, &RecordError{Message: fmt.Sprintf("resource %s has negative capacity %.2f", r.ID, r.CapacityHoursPerWeek)}
		}
		known[r.ID] = true
	}

	grouped := make(map[string][]types.Assignment)
	for i := range assignments {
		a := assignments[i]
		if err := a.Validate(); err != nil {
			return nil, &RecordError{
				Message: fmt.Sprintf("assignment of task %q to resource %q", a.TaskID, a.ResourceID),
				Cause:   err,
			}
		}
		if !known[a.ResourceID] {
			return nil, &RecordError{Message: fmt.Sprintf("assignment of task %s references unknown resource %s", a.TaskID, a.ResourceID)}
		}
		grouped[a.ResourceID] = append(grouped[a.ResourceID], a)
	}
	return grouped, nil
}

// Project computes the weekly series for a single resource from its assignments.
// Assignments are assumed valid and belonging to the resource.
func Project(resource types.Resource, assignments []types.Assignment, h Horizon) types.ResourceWorkload {
	capacity := decimal.NewFromFloat(resource.CapacityHoursPerWeek)

	weeks := make([]types.WeeklyUtilization, 0, h.Weeks)
	utilSum := decimal.Zero
	over := false

	for _, start := range h.WeekStarts() {
		end := WeekEnd(start)
		allocated := decimal.Zero
		for _, a := range assignments {
			if Overlaps(a.StartDate, a.EndDate, start, end) {
				allocated = allocated.Add(decimal.NewFromFloat(a.HoursPerWeek))
			}
		}

		util := Utilization(allocated, capacity)
		utilSum = utilSum.Add(util)
		if util.GreaterThan(hundred) {
			over = true
		}

		weeks = append(weeks, types.WeeklyUtilization{
			WeekStart:   start,
			Capacity:    capacity.InexactFloat64(),
			Allocated:   allocated.InexactFloat64(),
			Utilization: util.InexactFloat64(),
		})
	}

	avg := decimal.Zero
	if len(weeks) > 0 {
		avg = utilSum.Div(decimal.NewFromInt(int64(len(weeks))))
	}

	return types.ResourceWorkload{
		ResourceID:         resource.ID,
		ResourceName:       resource.Name,
		Role:               resource.Role,
		Weeks:              weeks,
		AverageUtilization: avg.InexactFloat64(),
		IsOverAllocated:    over,
	}
}

// Utilization returns allocated/capacity as a percentage. Zero capacity yields zero.
func Utilization(allocated, capacity decimal.Decimal) decimal.Decimal {
	if !capacity.IsPositive() {
		return decimal.Zero
	}
	return allocated.Div(capacity).Mul(hundred)
}
