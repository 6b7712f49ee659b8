// Package advisory asks an external reasoning collaborator for rebalance suggestions.
// Advice is optional: every failure degrades to "no suggestions".
package advisory

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/capacity-planner/internal/bottleneck"
	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/jonathan/capacity-planner/internal/workload"
)

// WorkloadSummary is the per-resource digest sent to the advisor.
type WorkloadSummary struct {
	ResourceID         string  `json:"resource_id"`
	ResourceName       string  `json:"resource_name"`
	Role               string  `json:"role"`
	AverageUtilization float64 `json:"average_utilization"`
	IsOverAllocated    bool    `json:"is_over_allocated"`
}

// ResourceSummary is the roster entry sent to the advisor.
type ResourceSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// Request is everything the advisor sees for one forecast.
type Request struct {
	ID           string                       `json:"id"`
	HorizonStart time.Time                    `json:"horizon_start"`
	WeeksAhead   int                          `json:"weeks_ahead"`
	Workloads    []WorkloadSummary            `json:"workloads"`
	Bottlenecks  []types.BottleneckPrediction `json:"bottlenecks"`
	BurnoutRisks []types.BurnoutRisk          `json:"burnout_risks"`
	Resources    []ResourceSummary            `json:"resources"`
}

// NewRequest packages a forecast's workloads, analysis and roster for the advisor.
func NewRequest(h workload.Horizon, workloads []types.ResourceWorkload, analysis bottleneck.Result, resources []types.Resource) Request {
	req := Request{
		ID:           uuid.NewString(),
		HorizonStart: h.Start,
		WeeksAhead:   h.Weeks,
		Workloads:    make([]WorkloadSummary, 0, len(workloads)),
		Bottlenecks:  analysis.Bottlenecks,
		BurnoutRisks: analysis.BurnoutRisks,
		Resources:    make([]ResourceSummary, 0, len(resources)),
	}
	for _, wl := range workloads {
		req.Workloads = append(req.Workloads, WorkloadSummary{
			ResourceID:         wl.ResourceID,
			ResourceName:       wl.ResourceName,
			Role:               wl.Role,
			AverageUtilization: wl.AverageUtilization,
			IsOverAllocated:    wl.IsOverAllocated,
		})
	}
	for _, r := range resources {
		req.Resources = append(req.Resources, ResourceSummary{
			ID:     r.ID,
			Name:   r.Name,
			Role:   r.Role,
			Skills: append([]string(nil), r.Skills...),
		})
	}
	return req
}
