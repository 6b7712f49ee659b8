package db

import (
	"context"
	"fmt"

	"github.com/jonathan/capacity-planner/internal/types"
)

// -----------------------------------------------------------------------------
// Assignment Methods
// -----------------------------------------------------------------------------

// AssignmentFilters holds optional filters for listing assignments. Empty fields match all.
type AssignmentFilters struct {
	ProjectID  string
	ResourceID string
	ScheduleID string
}

// buildAssignmentQuery renders the filtered assignment query and its arguments.
func buildAssignmentQuery(filters AssignmentFilters) (string, []any) {
	query := `SELECT a.resource_id, a.task_id, a.schedule_id, a.start_date, a.end_date, a.hours_per_week
		FROM assignments a`
	if filters.ProjectID != "" {
		query += ` JOIN schedules sc ON sc.id = a.schedule_id`
	}
	query += ` WHERE 1=1`

	args := []any{}
	argNum := 1

	if filters.ProjectID != "" {
		query += fmt.Sprintf(" AND sc.project_id = $%d", argNum)
		args = append(args, filters.ProjectID)
		argNum++
	}
	if filters.ResourceID != "" {
		query += fmt.Sprintf(" AND a.resource_id = $%d", argNum)
		args = append(args, filters.ResourceID)
		argNum++
	}
	if filters.ScheduleID != "" {
		query += fmt.Sprintf(" AND a.schedule_id = $%d", argNum)
		args = append(args, filters.ScheduleID)
	}

	query += " ORDER BY a.resource_id, a.start_date, a.task_id"
	return query, args
}

// ListAssignments retrieves assignments with optional filters
func (db *DB) ListAssignments(ctx context.Context, filters AssignmentFilters) ([]types.Assignment, error) {
	query, args := buildAssignmentQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]types.Assignment, 0)
	for rows.Next() {
		var a types.Assignment
		if err := rows.Scan(&a.ResourceID, &a.TaskID, &a.ScheduleID, &a.StartDate, &a.EndDate, &a.HoursPerWeek); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// ListAssignmentsByProject returns the project's assignments, or all when projectID is empty.
func (db *DB) ListAssignmentsByProject(ctx context.Context, projectID string) ([]types.Assignment, error) {
	return db.ListAssignments(ctx, AssignmentFilters{ProjectID: projectID})
}

// ListAssignmentsByResource returns every assignment of one resource across projects.
func (db *DB) ListAssignmentsByResource(ctx context.Context, resourceID string) ([]types.Assignment, error) {
	return db.ListAssignments(ctx, AssignmentFilters{ResourceID: resourceID})
}

// ListAssignmentsBySchedule returns the assignments of one schedule.
func (db *DB) ListAssignmentsBySchedule(ctx context.Context, scheduleID string) ([]types.Assignment, error) {
	return db.ListAssignments(ctx, AssignmentFilters{ScheduleID: scheduleID})
}

// CreateAssignment stores a validated assignment.
func (db *DB) CreateAssignment(ctx context.Context, a types.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO assignments (resource_id, task_id, schedule_id, start_date, end_date, hours_per_week)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ResourceID, a.TaskID, a.ScheduleID, a.StartDate, a.EndDate, a.HoursPerWeek,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment %s/%s: %w", a.ResourceID, a.TaskID, err)
	}
	return nil
}

// DeleteAssignmentsBySchedule removes every assignment in a schedule and returns how many were deleted.
func (db *DB) DeleteAssignmentsBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM assignments WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignments for schedule %s: %w", scheduleID, err)
	}
	return tag.RowsAffected(), nil
}
