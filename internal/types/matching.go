// Package types provides type definitions for structured data used throughout the capacity planner.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillMatch scores one candidate resource against a task.
type SkillMatch struct {
	ResourceID        string   `json:"resource_id"`
	ResourceName      string   `json:"resource_name"`
	MatchScore        int      `json:"match_score"`
	MatchedSkills     []string `json:"matched_skills"`
	AvailableCapacity float64  `json:"available_capacity"`
}

// SuggestionType enumerates the remediation kinds an advisor may propose.
type SuggestionType string

const (
	SuggestionReassign SuggestionType = "reassign"
	SuggestionDelay    SuggestionType = "delay"
	SuggestionSplit    SuggestionType = "split"
	SuggestionHire     SuggestionType = "hire"
)

// IsValid returns true if the suggestion type is a known value.
func (t SuggestionType) IsValid() bool {
	switch t {
	case SuggestionReassign, SuggestionDelay, SuggestionSplit, SuggestionHire:
		return true
	default:
		return false
	}
}

// RebalanceSuggestion is advisory output from the external reasoning collaborator.
type RebalanceSuggestion struct {
	Type               SuggestionType `json:"type"`
	Description        string         `json:"description"`
	AffectedResourceID string         `json:"affected_resource_id,omitempty"`
	AffectedTaskID     string         `json:"affected_task_id,omitempty"`
	EstimatedImpact    string         `json:"estimated_impact"`
	Confidence         int            `json:"confidence"`
}
