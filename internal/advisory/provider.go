package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/capacity-planner/internal/llm"
	"github.com/jonathan/capacity-planner/internal/prompts"
	"github.com/jonathan/capacity-planner/internal/schemas"
	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"

	embedded "github.com/jonathan/capacity-planner/schemas"
)

// DefaultMaxSuggestions caps how many suggestions are kept from one advisor reply.
const DefaultMaxSuggestions = 10

// Provider produces rebalance suggestions for a request.
type Provider interface {
	Suggest(ctx context.Context, req Request) ([]types.RebalanceSuggestion, error)
}

// NoopProvider is used when no advisor is configured.
type NoopProvider struct{}

// Suggest always reports the advisor as unavailable.
func (NoopProvider) Suggest(context.Context, Request) ([]types.RebalanceSuggestion, error) {
	return nil, ErrUnavailable
}

// LLMProvider asks a language model for suggestions and validates the reply
// against the embedded rebalance_suggestions schema.
type LLMProvider struct {
	client         llm.Client
	maxSuggestions int
}

// NewLLMProvider creates a provider backed by an LLM client.
func NewLLMProvider(client llm.Client) *LLMProvider {
	return &LLMProvider{client: client, maxSuggestions: DefaultMaxSuggestions}
}

// WithMaxSuggestions overrides DefaultMaxSuggestions.
func (p *LLMProvider) WithMaxSuggestions(n int) *LLMProvider {
	if n > 0 {
		p.maxSuggestions = n
	}
	return p
}

// Suggest implements Provider.
func (p *LLMProvider) Suggest(ctx context.Context, req Request) ([]types.RebalanceSuggestion, error) {
	if p == nil || p.client == nil {
		return nil, ErrUnavailable
	}

	prompt, err := p.buildPrompt(req)
	if err != nil {
		return nil, &Error{Message: "failed to build advisory prompt", Cause: err}
	}

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &Error{Message: "advisor call failed", Cause: err}
	}

	return p.parse(raw)
}

func (p *LLMProvider) parse(raw string) ([]types.RebalanceSuggestion, error) {
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(embedded.RebalanceSuggestions, raw); err != nil {
		return nil, &Error{Message: "advisor reply does not match schema", Cause: err}
	}

	var replies []suggestionReply
	if err := json.Unmarshal([]byte(raw), &replies); err != nil {
		return nil, &Error{Message: "failed to decode advisor reply", Cause: err}
	}
	if len(replies) > p.maxSuggestions {
		replies = replies[:p.maxSuggestions]
	}

	suggestions := make([]types.RebalanceSuggestion, len(replies))
	for i, r := range replies {
		suggestions[i] = types.RebalanceSuggestion{
			Type:               r.Type,
			Description:        r.Description,
			AffectedResourceID: r.AffectedResourceID,
			AffectedTaskID:     r.AffectedTaskID,
			EstimatedImpact:    r.EstimatedImpact,
			Confidence:         int(math.Round(r.Confidence)),
		}
	}
	return suggestions, nil
}

// suggestionReply is one decoded suggestion. Models often write integral confidences as
// 85.0, which the schema accepts as an integer.
type suggestionReply struct {
	Type               types.SuggestionType `json:"type"`
	Description        string               `json:"description"`
	AffectedResourceID string               `json:"affected_resource_id"`
	AffectedTaskID     string               `json:"affected_task_id"`
	EstimatedImpact    string               `json:"estimated_impact"`
	Confidence         float64              `json:"confidence"`
}

func (p *LLMProvider) buildPrompt(req Request) (string, error) {
	system, err := prompts.Get("advisory.json", "rebalance-system")
	if err != nil {
		return "", err
	}
	return prompts.Render("advisory.json", "rebalance-suggestions", map[string]string{
		"System":         system,
		"WeeksAhead":     strconv.Itoa(req.WeeksAhead),
		"HorizonStart":   workload.WeekStart(req.HorizonStart).Format(types.WeekKeyLayout),
		"Workloads":      formatWorkloads(req.Workloads),
		"Bottlenecks":    formatBottlenecks(req.Bottlenecks),
		"BurnoutRisks":   formatBurnoutRisks(req.BurnoutRisks),
		"Resources":      formatResources(req.Resources),
		"MaxSuggestions": strconv.Itoa(p.maxSuggestions),
	})
}

func formatWorkloads(workloads []WorkloadSummary) string {
	if len(workloads) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, w := range workloads {
		fmt.Fprintf(&sb, "- %s (%s, id=%s): average %.1f%%", w.ResourceName, orDash(w.Role), w.ResourceID, w.AverageUtilization)
		if w.IsOverAllocated {
			sb.WriteString(", over-allocated")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatBottlenecks(bottlenecks []types.BottleneckPrediction) string {
	if len(bottlenecks) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, b := range bottlenecks {
		tasks := make([]string, 0, len(b.ContributingTasks))
		for _, t := range b.ContributingTasks {
			tasks = append(tasks, fmt.Sprintf("%s [%s] %.1fh", t.TaskName, t.TaskID, t.HoursPerWeek))
		}
		fmt.Fprintf(&sb, "- %s (id=%s), week %s: %.1f%% %s; tasks: %s\n",
			b.ResourceName, b.ResourceID, b.Week, b.Utilization, b.Severity, orDash(strings.Join(tasks, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatBurnoutRisks(risks []types.BurnoutRisk) string {
	if len(risks) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, r := range risks {
		fmt.Fprintf(&sb, "- %s (id=%s): %d consecutive weeks, average %.1f%%, risk %s\n",
			r.ResourceName, r.ResourceID, r.ConsecutiveOverloadWeeks, r.AverageUtilization, r.RiskLevel)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatResources(resources []ResourceSummary) string {
	if len(resources) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, r := range resources {
		fmt.Fprintf(&sb, "- %s (%s, id=%s): %s\n", r.Name, orDash(r.Role), r.ID, orDash(strings.Join(r.Skills, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
