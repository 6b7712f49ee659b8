package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/capacity-planner/internal/types"
)

// -----------------------------------------------------------------------------
// Task Methods
// -----------------------------------------------------------------------------

const taskColumns = `t.id, t.schedule_id, sc.project_id, t.name, t.description, t.start_date, t.end_date`

// GetTask retrieves a task. An empty scheduleID matches the task in any schedule.
func (db *DB) GetTask(ctx context.Context, taskID, scheduleID string) (*types.Task, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN schedules sc ON sc.id = t.schedule_id
		 WHERE t.id = $1 AND ($2 = '' OR t.schedule_id = $2)
		 ORDER BY t.schedule_id
		 LIMIT 1`,
		taskID, scheduleID,
	)

	var t types.Task
	if err := row.Scan(&t.ID, &t.ScheduleID, &t.ProjectID, &t.Name, &t.Description, &t.StartDate, &t.EndDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	return &t, nil
}

// GetTasks retrieves tasks by id. Missing ids are skipped.
func (db *DB) GetTasks(ctx context.Context, ids []string) ([]types.Task, error) {
	tasks := make([]types.Task, 0, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN schedules sc ON sc.id = t.schedule_id
		 WHERE t.id = ANY($1)
		 ORDER BY t.id, t.schedule_id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.ID, &t.ScheduleID, &t.ProjectID, &t.Name, &t.Description, &t.StartDate, &t.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// UpsertTask stores a task, creating its schedule under projectID when needed.
func (db *DB) UpsertTask(ctx context.Context, t types.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task %s: %w", t.ID, err)
	}
	if t.ScheduleID == "" {
		return fmt.Errorf("invalid task %s: schedule_id is required", t.ID)
	}

	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO schedules (id, project_id) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET project_id = COALESCE(NULLIF($2, ''), schedules.project_id)`,
			t.ScheduleID, t.ProjectID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert schedule %s: %w", t.ScheduleID, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO tasks (id, schedule_id, name, description, start_date, end_date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (schedule_id, id) DO UPDATE SET name = $3, description = $4, start_date = $5, end_date = $6`,
			t.ID, t.ScheduleID, t.Name, t.Description, t.StartDate, t.EndDate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
		}
		return nil
	})
}

// UpsertSchedule records a schedule. An empty projectID keeps the stored project.
func (db *DB) UpsertSchedule(ctx context.Context, scheduleID, projectID string) error {
	if scheduleID == "" {
		return fmt.Errorf("schedule_id is required")
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO schedules (id, project_id) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET project_id = COALESCE(NULLIF($2, ''), schedules.project_id)`,
		scheduleID, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule %s: %w", scheduleID, err)
	}
	return nil
}
