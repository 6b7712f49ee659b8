// Package bottleneck detects over-capacity weeks and sustained overload runs.
package bottleneck

import (
	"time"

	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
)

// Severity thresholds are exclusive lower bounds on utilization percent.
const (
	warningThreshold  = 100.0
	criticalThreshold = 125.0
	severeThreshold   = 150.0
)

// MinBurnoutRun is the shortest overload run that is reported as a burnout risk.
const MinBurnoutRun = 3

// Result holds everything the analyzer derives for one scope.
type Result struct {
	Bottlenecks  []types.BottleneckPrediction
	BurnoutRisks []types.BurnoutRisk
}

// ClassifySeverity returns the severity tier for an over-capacity utilization.
// Callers only classify weeks above 100%; anything at or below returns warning.
func ClassifySeverity(utilization float64) types.Severity {
	switch {
	case utilization > severeThreshold:
		return types.SeveritySevere
	case utilization > criticalThreshold:
		return types.SeverityCritical
	default:
		return types.SeverityWarning
	}
}

// ClassifyBurnout maps the longest overload run to a risk level.
// The second return is false when the run is too short to report.
func ClassifyBurnout(maxConsecutive int) (types.RiskLevel, bool) {
	switch {
	case maxConsecutive >= 8:
		return types.RiskCritical, true
	case maxConsecutive >= 6:
		return types.RiskHigh, true
	case maxConsecutive >= 4:
		return types.RiskMedium, true
	case maxConsecutive >= MinBurnoutRun:
		return types.RiskLow, true
	default:
		return "", false
	}
}

// LongestOverloadRun returns the longest run of consecutive weeks above 100%.
func LongestOverloadRun(weeks []types.WeeklyUtilization) int {
	longest, current := 0, 0
	for _, w := range weeks {
		if w.Utilization > warningThreshold {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}
	return longest
}

// Analyze emits a bottleneck for every over-capacity week inside the horizon and a burnout
// risk for every resource whose longest overload run inside the horizon reaches MinBurnoutRun.
//
// assignments is the full assignment list the workloads were built from; it is used to
// re-derive contributing tasks per flagged week. taskNames maps task id to display name;
// missing entries fall back to the task id.
func Analyze(workloads []types.ResourceWorkload, assignments []types.Assignment, taskNames map[string]string, h workload.Horizon) Result {
	result := Result{
		Bottlenecks:  []types.BottleneckPrediction{},
		BurnoutRisks: []types.BurnoutRisk{},
	}

	byResource := make(map[string][]types.Assignment)
	for _, a := range assignments {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}

	for _, wl := range workloads {
		inHorizon := make([]types.WeeklyUtilization, 0, len(wl.Weeks))
		for _, week := range wl.Weeks {
			if h.Contains(week.WeekStart) {
				inHorizon = append(inHorizon, week)
			}
		}

		for _, week := range inHorizon {
			if !week.IsOverAllocated() {
				continue
			}
			result.Bottlenecks = append(result.Bottlenecks, types.BottleneckPrediction{
				ResourceID:        wl.ResourceID,
				ResourceName:      wl.ResourceName,
				Week:              week.WeekKey(),
				Utilization:       week.Utilization,
				Severity:          ClassifySeverity(week.Utilization),
				ContributingTasks: contributingTasks(byResource[wl.ResourceID], week.WeekStart, taskNames),
			})
		}

		run := LongestOverloadRun(inHorizon)
		if level, ok := ClassifyBurnout(run); ok {
			result.BurnoutRisks = append(result.BurnoutRisks, types.BurnoutRisk{
				ResourceID:               wl.ResourceID,
				ResourceName:             wl.ResourceName,
				ConsecutiveOverloadWeeks: run,
				AverageUtilization:       wl.AverageUtilization,
				RiskLevel:                level,
			})
		}
	}

	return result
}

func contributingTasks(assignments []types.Assignment, weekStart time.Time, taskNames map[string]string) []types.ContributingTask {
	weekEnd := workload.WeekEnd(weekStart)
	tasks := []types.ContributingTask{}
	for _, a := range assignments {
		if !workload.Overlaps(a.StartDate, a.EndDate, weekStart, weekEnd) {
			continue
		}
		name, ok := taskNames[a.TaskID]
		if !ok || name == "" {
			name = a.TaskID
		}
		tasks = append(tasks, types.ContributingTask{
			TaskID:       a.TaskID,
			TaskName:     name,
			HoursPerWeek: a.HoursPerWeek,
		})
	}
	return tasks
}
