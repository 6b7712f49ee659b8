package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
	"github.com/shopspring/decimal"
)

// Match scores every active resource against the task and returns the candidates best first.
//
// assignments should be the schedule-scoped list for the task's schedule. When the task has
// no date range the resource's full nominal capacity is reported as available.
func Match(task types.Task, resources []types.Resource, assignments []types.Assignment) []types.SkillMatch {
	taskText := strings.ToLower(task.Name + " " + task.Description)
	taskKeywords := ExtractKeywords(taskText)

	byResource := make(map[string][]types.Assignment)
	for _, a := range assignments {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}

	matches := make([]types.SkillMatch, 0, len(resources))
	for _, r := range resources {
		if !r.IsActive {
			continue
		}

		matched := []string{}
		for _, skill := range r.Skills {
			if SkillMatches(skill, taskText, taskKeywords) {
				matched = append(matched, skill)
			}
		}

		matches = append(matches, types.SkillMatch{
			ResourceID:        r.ID,
			ResourceName:      r.Name,
			MatchScore:        Score(len(matched), len(r.Skills)),
			MatchedSkills:     matched,
			AvailableCapacity: Available(r, &task, byResource[r.ID]),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.AvailableCapacity != b.AvailableCapacity {
			return a.AvailableCapacity > b.AvailableCapacity
		}
		return a.ResourceID < b.ResourceID
	})
	return matches
}

// Score returns round(100 * matched / total). A resource without skills scores 0.
func Score(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}

// Available returns the resource's weekly hours left over the task's date range.
func Available(r types.Resource, task *types.Task, assignments []types.Assignment) float64 {
	if !task.HasDateRange() {
		return r.CapacityHoursPerWeek
	}

	allocated := decimal.Zero
	for _, a := range assignments {
		if a.ResourceID != r.ID {
			continue
		}
		// task end acts as the exclusive window end, as for weekly buckets
		if workload.Overlaps(a.StartDate, a.EndDate, *task.StartDate, *task.EndDate) {
			allocated = allocated.Add(decimal.NewFromFloat(a.HoursPerWeek))
		}
	}
	left := decimal.NewFromFloat(r.CapacityHoursPerWeek).Sub(allocated)
	if left.IsNegative() {
		return 0
	}
	return left.InexactFloat64()
}
