package advisory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/capacity-planner/internal/bottleneck"
	"github.com/jonathan/capacity-planner/internal/llm"
	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.reply, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                  { return nil }

type providerFunc func(ctx context.Context, req Request) ([]types.RebalanceSuggestion, error)

func (fn providerFunc) Suggest(ctx context.Context, req Request) ([]types.RebalanceSuggestion, error) {
	return fn(ctx, req)
}

func sampleRequest(t *testing.T) Request {
	t.Helper()
	h, err := workload.NewHorizon(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), 4)
	require.NoError(t, err)

	workloads := []types.ResourceWorkload{
		{ResourceID: "r1", ResourceName: "Ada", Role: "backend", AverageUtilization: 131.25, IsOverAllocated: true},
		{ResourceID: "r2", ResourceName: "Bo", Role: "backend", AverageUtilization: 40},
	}
	analysis := bottleneck.Result{
		Bottlenecks: []types.BottleneckPrediction{{
			ResourceID: "r1", ResourceName: "Ada", Week: "2026-01-12", Utilization: 160, Severity: types.SeveritySevere,
			ContributingTasks: []types.ContributingTask{{TaskID: "t9", TaskName: "Launch", HoursPerWeek: 44}},
		}},
		BurnoutRisks: []types.BurnoutRisk{{ResourceID: "r1", ResourceName: "Ada", ConsecutiveOverloadWeeks: 3, AverageUtilization: 131.25, RiskLevel: types.RiskLow}},
	}
	resources := []types.Resource{
		{ID: "r1", Name: "Ada", Role: "backend", Skills: []string{"go", "postgres"}},
		{ID: "r2", Name: "Bo", Role: "backend", Skills: []string{"go"}},
	}
	return NewRequest(h, workloads, analysis, resources)
}

const validReply = "```json\n" + `[
  {"type": "reassign", "description": "Move Launch from Ada to Bo", "affected_resource_id": "r1", "affected_task_id": "t9", "estimated_impact": "Ada drops to 50%", "confidence": 80},
  {"type": "hire", "description": "Add a backend contractor", "affected_resource_id": null, "estimated_impact": "Adds 40h/week", "confidence": 40}
]` + "\n```"

func TestNewRequest(t *testing.T) {
	req := sampleRequest(t)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, 4, req.WeeksAhead)
	assert.Equal(t, "2026-01-05", req.HorizonStart.Format(types.WeekKeyLayout))
	require.Len(t, req.Workloads, 2)
	assert.True(t, req.Workloads[0].IsOverAllocated)
	require.Len(t, req.Resources, 2)
	assert.Equal(t, []string{"go", "postgres"}, req.Resources[0].Skills)
	assert.Len(t, req.Bottlenecks, 1)
	assert.Len(t, req.BurnoutRisks, 1)
}

func TestLLMProvider_Suggest(t *testing.T) {
	client := &fakeClient{reply: validReply}
	provider := NewLLMProvider(client)

	suggestions, err := provider.Suggest(context.Background(), sampleRequest(t))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, types.SuggestionReassign, suggestions[0].Type)
	assert.Equal(t, "t9", suggestions[0].AffectedTaskID)
	assert.Equal(t, 80, suggestions[0].Confidence)
	assert.Equal(t, types.SuggestionHire, suggestions[1].Type)
	assert.Empty(t, suggestions[1].AffectedResourceID)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Equal(t, llm.TierAdvanced, client.tiers[0])
	assert.Contains(t, prompt, "Ada (id=r1), week 2026-01-12: 160.0% severe; tasks: Launch [t9] 44.0h")
	assert.Contains(t, prompt, "3 consecutive weeks")
	assert.Contains(t, prompt, "Bo (backend, id=r2): go")
	assert.NotContains(t, prompt, "{{.")
}

func TestLLMProvider_MaxSuggestions(t *testing.T) {
	provider := NewLLMProvider(&fakeClient{reply: validReply}).WithMaxSuggestions(1)

	suggestions, err := provider.Suggest(context.Background(), sampleRequest(t))
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestLLMProvider_IntegralFloatConfidence(t *testing.T) {
	reply := `[{"type": "delay", "description": "Push Launch one week", "affected_task_id": "t9", "estimated_impact": "Ada back to 100%", "confidence": 85.0}]`

	suggestions, err := NewLLMProvider(&fakeClient{reply: reply}).Suggest(context.Background(), sampleRequest(t))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, types.SuggestionDelay, suggestions[0].Type)
	assert.Equal(t, 85, suggestions[0].Confidence)
}

func TestLLMProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		want   string
	}{
		{"client error", &fakeClient{err: errors.New("quota exceeded")}, "advisor call failed"},
		{"not json", &fakeClient{reply: "I would hire more people"}, "advisor reply"},
		{"schema mismatch", &fakeClient{reply: `[{"type":"fire","description":"x","estimated_impact":"y","confidence":5}]`}, "does not match schema"},
		{"missing confidence", &fakeClient{reply: `[{"type":"delay","description":"x","estimated_impact":"y"}]`}, "does not match schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMProvider(tt.client).Suggest(context.Background(), sampleRequest(t))
			require.Error(t, err)
			var advErr *Error
			assert.True(t, errors.As(err, &advErr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLLMProvider_NilClientUnavailable(t *testing.T) {
	_, err := NewLLMProvider(nil).Suggest(context.Background(), sampleRequest(t))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGateway_SkipsWithoutBottlenecks(t *testing.T) {
	called := false
	g := NewGateway(providerFunc(func(context.Context, Request) ([]types.RebalanceSuggestion, error) {
		called = true
		return []types.RebalanceSuggestion{{Type: types.SuggestionHire}}, nil
	}), time.Second)

	req := sampleRequest(t)
	req.Bottlenecks = nil

	assert.Nil(t, g.Advise(context.Background(), req))
	assert.False(t, called)
}

func TestGateway_ReturnsSuggestions(t *testing.T) {
	g := NewGateway(NewLLMProvider(&fakeClient{reply: validReply}), time.Second)
	suggestions := g.Advise(context.Background(), sampleRequest(t))
	assert.Len(t, suggestions, 2)
}

func TestGateway_SwallowsFailures(t *testing.T) {
	providers := map[string]Provider{
		"noop":      NoopProvider{},
		"nil":       nil,
		"error":     providerFunc(func(context.Context, Request) ([]types.RebalanceSuggestion, error) { return nil, errors.New("boom") }),
		"malformed": NewLLMProvider(&fakeClient{reply: "{"}),
	}
	for name, p := range providers {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, NewGateway(p, time.Second).Advise(context.Background(), sampleRequest(t)))
		})
	}
}

func TestGateway_TimesOut(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// ignores its context entirely
	stuck := providerFunc(func(context.Context, Request) ([]types.RebalanceSuggestion, error) {
		<-release
		return []types.RebalanceSuggestion{{Type: types.SuggestionDelay}}, nil
	})

	g := NewGateway(stuck, 20*time.Millisecond)
	start := time.Now()
	suggestions := g.Advise(context.Background(), sampleRequest(t))

	assert.Nil(t, suggestions)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewGateway_Defaults(t *testing.T) {
	g := NewGateway(nil, 0)
	assert.Equal(t, DefaultTimeout, g.Timeout())
}
