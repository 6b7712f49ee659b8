// Package forecast orchestrates workload aggregation, bottleneck analysis, capacity
// forecasting, skill matching and optional rebalance advice over collaborator data.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonathan/capacity-planner/internal/advisory"
	"github.com/jonathan/capacity-planner/internal/bottleneck"
	"github.com/jonathan/capacity-planner/internal/capacity"
	"github.com/jonathan/capacity-planner/internal/matching"
	"github.com/jonathan/capacity-planner/internal/metrics"
	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultWeeksAhead is used when a host passes 0 for the horizon.
const DefaultWeeksAhead = 8

// maxParallelReads bounds concurrent per-resource assignment reads.
const maxParallelReads = 8

// Engine answers forecast and matching requests. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	resources   ResourceDirectory
	assignments AssignmentSource
	tasks       TaskSource
	advisor     *advisory.Gateway
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now, mainly for tests and back-dated CLI runs.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAdvisor enables rebalance suggestions.
func WithAdvisor(g *advisory.Gateway) Option {
	return func(e *Engine) { e.advisor = g }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(resources ResourceDirectory, assignments AssignmentSource, tasks TaskSource, opts ...Option) *Engine {
	e := &Engine{
		resources:   resources,
		assignments: assignments,
		tasks:       tasks,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromStore is NewEngine for a collaborator that serves every read.
func NewEngineFromStore(store Store, opts ...Option) *Engine {
	return NewEngine(store, store, store, opts...)
}

// scope is the data one forecast is computed from.
type scope struct {
	horizon     workload.Horizon
	roster      []types.Resource
	resources   []types.Resource
	assignments []types.Assignment
	workloads   []types.ResourceWorkload
}

// ForecastBottlenecks computes bottlenecks, burnout risks and the capacity forecast for a
// project, or the whole portfolio when projectID is empty. callerID is only logged.
func (e *Engine) ForecastBottlenecks(ctx context.Context, projectID string, weeksAhead int, callerID string) (*types.ResourceForecastResult, error) {
	start := time.Now()
	defer func() { metrics.ForecastDurationSeconds.Observe(time.Since(start).Seconds()) }()

	sc, err := e.load(ctx, projectID, weeksAhead)
	if err != nil {
		return nil, err
	}

	analysis := bottleneck.Analyze(sc.workloads, sc.assignments, nil, sc.horizon)
	if err := e.nameContributingTasks(ctx, analysis.Bottlenecks); err != nil {
		return nil, err
	}

	result := &types.ResourceForecastResult{
		ProjectID:        projectID,
		WeeksAhead:       sc.horizon.Weeks,
		GeneratedAt:      e.now().UTC(),
		Bottlenecks:      analysis.Bottlenecks,
		BurnoutRisks:     analysis.BurnoutRisks,
		CapacityForecast: capacity.Build(sc.workloads, sc.horizon),
		Summary:          Summarize(sc.workloads),
	}

	if len(analysis.Bottlenecks) > 0 && e.advisor != nil {
		req := advisory.NewRequest(sc.horizon, sc.workloads, analysis, sc.roster)
		result.RebalanceSuggestions = e.advisor.Advise(ctx, req)
	}

	e.record(projectID, result)
	e.logger.Info("forecast computed",
		"project_id", projectID,
		"caller_id", callerID,
		"weeks_ahead", sc.horizon.Weeks,
		"resources", result.Summary.TotalResources,
		"bottlenecks", len(result.Bottlenecks),
		"burnout_risks", len(result.BurnoutRisks),
		"suggestions", len(result.RebalanceSuggestions),
		"duration", time.Since(start))

	return result, nil
}

// Workloads returns the per-resource weekly series for a project or the portfolio.
func (e *Engine) Workloads(ctx context.Context, projectID string, weeksAhead int) ([]types.ResourceWorkload, error) {
	sc, err := e.load(ctx, projectID, weeksAhead)
	if err != nil {
		return nil, err
	}
	return sc.workloads, nil
}

// MatchResourcesToTask scores every active resource against a scheduled task.
func (e *Engine) MatchResourcesToTask(ctx context.Context, taskID, scheduleID string) ([]types.SkillMatch, error) {
	if taskID == "" {
		return nil, &InvalidInputError{Field: "task_id", Message: "is required"}
	}

	start := time.Now()
	defer func() { metrics.MatchDurationSeconds.Observe(time.Since(start).Seconds()) }()

	task, err := e.tasks.GetTask(ctx, taskID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	if task == nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}
	if scheduleID == "" {
		scheduleID = task.ScheduleID
	}

	g, gCtx := errgroup.WithContext(ctx)

	var roster []types.Resource
	var scheduled []types.Assignment
	g.Go(func() error {
		var err error
		roster, err = e.resources.ListActiveResources(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list active resources: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if scheduleID == "" {
			return nil
		}
		var err error
		scheduled, err = e.assignments.ListAssignmentsBySchedule(gCtx, scheduleID)
		if err != nil {
			return fmt.Errorf("failed to list assignments for schedule %s: %w", scheduleID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return matching.Match(*task, roster, scheduled), nil
}

func (e *Engine) load(ctx context.Context, projectID string, weeksAhead int) (*scope, error) {
	if weeksAhead == 0 {
		weeksAhead = DefaultWeeksAhead
	}
	if weeksAhead < 0 {
		return nil, &InvalidInputError{Field: "weeks_ahead", Message: fmt.Sprintf("must be a positive integer, got %d", weeksAhead)}
	}
	h, err := workload.NewHorizon(e.now(), weeksAhead)
	if err != nil {
		return nil, &InvalidInputError{Field: "weeks_ahead", Message: err.Error()}
	}

	scoped, err := e.assignments.ListAssignmentsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for project %q: %w", projectID, err)
	}
	ids := resourceIDs(scoped)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)

	var roster []types.Resource
	g.Go(func() error {
		var err error
		roster, err = e.resources.ListActiveResources(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list active resources: %w", err)
		}
		return nil
	})

	// each slot is written by exactly one goroutine
	perResource := make([][]types.Assignment, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			list, err := e.assignments.ListAssignmentsByResource(gCtx, id)
			if err != nil {
				return fmt.Errorf("failed to list assignments for resource %s: %w", id, err)
			}
			perResource[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resources, err := e.scopeResources(ctx, ids, roster)
	if err != nil {
		return nil, err
	}

	var all []types.Assignment
	for _, list := range perResource {
		all = append(all, list...)
	}

	workloads, err := workload.Aggregate(resources, all, h)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workloads: %w", err)
	}

	return &scope{
		horizon:     h,
		roster:      roster,
		resources:   resources,
		assignments: all,
		workloads:   workloads,
	}, nil
}

// scopeResources resolves ids against the active roster, falling back to a direct lookup
// for resources that are assigned but no longer active. Unknown ids are dropped here and
// rejected by the aggregator.
func (e *Engine) scopeResources(ctx context.Context, ids []string, roster []types.Resource) ([]types.Resource, error) {
	byID := make(map[string]types.Resource, len(roster))
	for _, r := range roster {
		byID[r.ID] = r
	}

	resources := make([]types.Resource, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			resources = append(resources, r)
			continue
		}
		r, err := e.resources.GetResource(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get resource %s: %w", id, err)
		}
		if r == nil {
			e.logger.Warn("assignment references unknown resource", "resource_id", id)
			continue
		}
		resources = append(resources, *r)
	}
	return resources, nil
}

func (e *Engine) nameContributingTasks(ctx context.Context, bottlenecks []types.BottleneckPrediction) error {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range bottlenecks {
		for _, t := range b.ContributingTasks {
			if !seen[t.TaskID] {
				seen[t.TaskID] = true
				ids = append(ids, t.TaskID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	tasks, err := e.tasks.GetTasks(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get contributing tasks: %w", err)
	}
	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.Name != "" {
			names[t.ID] = t.Name
		}
	}

	for i := range bottlenecks {
		for j := range bottlenecks[i].ContributingTasks {
			ct := &bottlenecks[i].ContributingTasks[j]
			if name, ok := names[ct.TaskID]; ok {
				ct.TaskName = name
			}
		}
	}
	return nil
}

func (e *Engine) record(projectID string, result *types.ResourceForecastResult) {
	scopeLabel := "project"
	if projectID == "" {
		scopeLabel = "portfolio"
	}
	metrics.ForecastsTotal.WithLabelValues(scopeLabel).Inc()
	for _, b := range result.Bottlenecks {
		metrics.BottlenecksTotal.WithLabelValues(b.Severity.String()).Inc()
	}
	for _, r := range result.BurnoutRisks {
		metrics.BurnoutRisksTotal.WithLabelValues(r.RiskLevel.String()).Inc()
	}
	metrics.OverAllocatedResources.Set(float64(result.Summary.OverAllocatedCount))
}

// Summarize computes the headline numbers. The average is the mean of per-resource
// averages, rounded to two decimals.
func Summarize(workloads []types.ResourceWorkload) types.ForecastSummary {
	summary := types.ForecastSummary{TotalResources: len(workloads)}
	if len(workloads) == 0 {
		return summary
	}

	sum := decimal.Zero
	for _, wl := range workloads {
		if wl.IsOverAllocated {
			summary.OverAllocatedCount++
		}
		sum = sum.Add(decimal.NewFromFloat(wl.AverageUtilization))
	}
	summary.AverageUtilization = sum.Div(decimal.NewFromInt(int64(len(workloads)))).Round(2).InexactFloat64()
	return summary
}

func resourceIDs(assignments []types.Assignment) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, a := range assignments {
		if a.ResourceID == "" || seen[a.ResourceID] {
			continue
		}
		seen[a.ResourceID] = true
		ids = append(ids, a.ResourceID)
	}
	sort.Strings(ids)
	return ids
}
