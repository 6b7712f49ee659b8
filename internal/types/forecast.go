// Package types provides type definitions for structured data used throughout the capacity planner.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// WeekKeyLayout formats a week start as a stable map/JSON key.
const WeekKeyLayout = "2006-01-02"

// WeeklyUtilization is a single resource's state for one calendar week.
type WeeklyUtilization struct {
	WeekStart   time.Time `json:"week_start"`
	Capacity    float64   `json:"capacity"`
	Allocated   float64   `json:"allocated"`
	Utilization float64   `json:"utilization"` // percent, may exceed 100
}

// WeekKey returns the Monday date of the week as YYYY-MM-DD.
func (w WeeklyUtilization) WeekKey() string {
	return w.WeekStart.Format(WeekKeyLayout)
}

// IsOverAllocated reports whether the week exceeds capacity.
func (w WeeklyUtilization) IsOverAllocated() bool {
	return w.Utilization > 100
}

// ResourceWorkload is one resource's projected timeline over the horizon.
type ResourceWorkload struct {
	ResourceID         string              `json:"resource_id"`
	ResourceName       string              `json:"resource_name"`
	Role               string              `json:"role"`
	Weeks              []WeeklyUtilization `json:"weeks"`
	AverageUtilization float64             `json:"average_utilization"`
	IsOverAllocated    bool                `json:"is_over_allocated"`
}

// Severity is the tier assigned to an over-capacity week.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeveritySevere   Severity = "severe"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a known value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityWarning, SeverityCritical, SeveritySevere:
		return true
	default:
		return false
	}
}

// RiskLevel is the burnout tier for a resource.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid returns true if the risk level is a known value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// ContributingTask is a task whose assignment overlaps a flagged week.
type ContributingTask struct {
	TaskID       string  `json:"task_id"`
	TaskName     string  `json:"task_name"`
	HoursPerWeek float64 `json:"hours_per_week"`
}

// BottleneckPrediction flags a single (resource, week) pair above 100% utilization.
type BottleneckPrediction struct {
	ResourceID        string             `json:"resource_id"`
	ResourceName      string             `json:"resource_name"`
	Week              string             `json:"week"`
	Utilization       float64            `json:"utilization"`
	Severity          Severity           `json:"severity"`
	ContributingTasks []ContributingTask `json:"contributing_tasks"`
}

// BurnoutRisk reports a resource with a sustained run of overloaded weeks.
type BurnoutRisk struct {
	ResourceID               string    `json:"resource_id"`
	ResourceName             string    `json:"resource_name"`
	ConsecutiveOverloadWeeks int       `json:"consecutive_overload_weeks"`
	AverageUtilization       float64   `json:"average_utilization"`
	RiskLevel                RiskLevel `json:"risk_level"`
}

// CapacityWeek is the portfolio-aggregated supply and demand for one week.
type CapacityWeek struct {
	Week           string  `json:"week"`
	TotalCapacity  float64 `json:"total_capacity"`
	TotalAllocated float64 `json:"total_allocated"`
	Surplus        float64 `json:"surplus"`
	Deficit        float64 `json:"deficit"`
}

// ForecastSummary holds headline numbers for a forecast.
type ForecastSummary struct {
	TotalResources     int     `json:"total_resources"`
	OverAllocatedCount int     `json:"over_allocated_count"`
	AverageUtilization float64 `json:"average_utilization"`
}

// ResourceForecastResult is the response of a bottleneck forecast.
type ResourceForecastResult struct {
	ProjectID            string                 `json:"project_id,omitempty"`
	WeeksAhead           int                    `json:"weeks_ahead"`
	GeneratedAt          time.Time              `json:"generated_at"`
	Bottlenecks          []BottleneckPrediction `json:"bottlenecks"`
	BurnoutRisks         []BurnoutRisk          `json:"burnout_risks"`
	CapacityForecast     []CapacityWeek         `json:"capacity_forecast"`
	RebalanceSuggestions []RebalanceSuggestion  `json:"rebalance_suggestions,omitempty"`
	Summary              ForecastSummary        `json:"summary"`
}
