package forecast

import (
	"context"

	"github.com/jonathan/capacity-planner/internal/types"
)

// ResourceDirectory reads the resource roster.
type ResourceDirectory interface {
	ListActiveResources(ctx context.Context) ([]types.Resource, error)
	// GetResource returns (nil, nil) when the resource does not exist.
	GetResource(ctx context.Context, id string) (*types.Resource, error)
}

// AssignmentSource reads resource-to-task assignments.
type AssignmentSource interface {
	// ListAssignmentsByProject returns every assignment under the project.
	// An empty project id means the whole portfolio.
	ListAssignmentsByProject(ctx context.Context, projectID string) ([]types.Assignment, error)
	ListAssignmentsByResource(ctx context.Context, resourceID string) ([]types.Assignment, error)
	ListAssignmentsBySchedule(ctx context.Context, scheduleID string) ([]types.Assignment, error)
}

// TaskSource reads scheduled tasks.
type TaskSource interface {
	// GetTask returns (nil, nil) when the task does not exist in the schedule.
	GetTask(ctx context.Context, taskID, scheduleID string) (*types.Task, error)
	// GetTasks returns the tasks it knows among ids; unknown ids are omitted.
	GetTasks(ctx context.Context, ids []string) ([]types.Task, error)
}

// Store is a collaborator that serves all three reads.
type Store interface {
	ResourceDirectory
	AssignmentSource
	TaskSource
}
