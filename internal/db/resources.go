package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/capacity-planner/internal/types"
)

// -----------------------------------------------------------------------------
// Resource Directory Methods
// -----------------------------------------------------------------------------

const resourceColumns = `r.id, r.name, r.role, r.capacity_hours_per_week, r.is_active,
	COALESCE(array_agg(s.skill ORDER BY s.position, s.skill) FILTER (WHERE s.skill IS NOT NULL), '{}')`

// ListActiveResources returns every active resource ordered by id.
func (db *DB) ListActiveResources(ctx context.Context) ([]types.Resource, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resourceColumns+`
		 FROM resources r
		 LEFT JOIN resource_skills s ON s.resource_id = r.id
		 WHERE r.is_active
		 GROUP BY r.id
		 ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active resources: %w", err)
	}
	defer rows.Close()

	resources := make([]types.Resource, 0)
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return resources, nil
}

// GetResource retrieves a resource by id whether or not it is active.
func (db *DB) GetResource(ctx context.Context, id string) (*types.Resource, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+resourceColumns+`
		 FROM resources r
		 LEFT JOIN resource_skills s ON s.resource_id = r.id
		 WHERE r.id = $1
		 GROUP BY r.id`,
		id,
	)
	r, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// UpsertResource inserts or replaces a resource and its skills.
func (db *DB) UpsertResource(ctx context.Context, r types.Resource) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid resource %s: %w", r.ID, err)
	}

	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO resources (id, name, role, capacity_hours_per_week, is_active)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET name = $2, role = $3, capacity_hours_per_week = $4, is_active = $5`,
			r.ID, r.Name, r.Role, r.CapacityHoursPerWeek, r.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert resource %s: %w", r.ID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM resource_skills WHERE resource_id = $1`, r.ID); err != nil {
			return fmt.Errorf("failed to clear skills for %s: %w", r.ID, err)
		}
		for i, skill := range r.Skills {
			_, err := tx.Exec(ctx,
				`INSERT INTO resource_skills (resource_id, skill, position) VALUES ($1, $2, $3)
				 ON CONFLICT DO NOTHING`,
				r.ID, skill, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert skill %q for %s: %w", skill, r.ID, err)
			}
		}
		return nil
	})
}

func scanResource(row pgx.Row) (*types.Resource, error) {
	var r types.Resource
	if err := row.Scan(&r.ID, &r.Name, &r.Role, &r.CapacityHoursPerWeek, &r.IsActive, &r.Skills); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan resource: %w", err)
	}
	return &r, nil
}
