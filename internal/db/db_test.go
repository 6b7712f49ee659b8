package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/capacity-planner/internal/forecast"
)

var _ forecast.Store = (*DB)(nil)

func TestBuildAssignmentQuery(t *testing.T) {
	tests := []struct {
		name        string
		filters     AssignmentFilters
		wantArgs    []any
		contains    []string
		notContains []string
	}{
		{
			name:        "portfolio",
			filters:     AssignmentFilters{},
			wantArgs:    []any{},
			notContains: []string{"JOIN schedules", "$1"},
		},
		{
			name:     "project",
			filters:  AssignmentFilters{ProjectID: "alpha"},
			wantArgs: []any{"alpha"},
			contains: []string{"JOIN schedules sc", "sc.project_id = $1"},
		},
		{
			name:        "resource",
			filters:     AssignmentFilters{ResourceID: "r1"},
			wantArgs:    []any{"r1"},
			contains:    []string{"a.resource_id = $1"},
			notContains: []string{"JOIN schedules"},
		},
		{
			name:     "all filters number arguments in order",
			filters:  AssignmentFilters{ProjectID: "alpha", ResourceID: "r1", ScheduleID: "s1"},
			wantArgs: []any{"alpha", "r1", "s1"},
			contains: []string{"sc.project_id = $1", "a.resource_id = $2", "a.schedule_id = $3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildAssignmentQuery(tt.filters)
			assert.Equal(t, tt.wantArgs, args)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, query, s)
			}
			assert.True(t, strings.HasSuffix(query, "ORDER BY a.resource_id, a.start_date, a.task_id"))
		})
	}
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"resources", "resource_skills", "schedules", "tasks", "assignments"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
