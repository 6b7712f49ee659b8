package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/capacity-planner/internal/snapshot"
)

func TestSchedulesOf(t *testing.T) {
	snap, err := snapshot.Parse("plan.yaml", []byte(`
resources:
  - {id: r1, name: Ada, capacity_hours_per_week: 40}
assignments:
  - {resource_id: r1, task_id: t1, schedule_id: s2, start_date: 2026-01-05, end_date: 2026-01-09, hours_per_week: 5}
  - {resource_id: r1, task_id: t2, schedule_id: s1, start_date: 2026-01-05, end_date: 2026-01-09, hours_per_week: 5}
tasks:
  - {id: t3, schedule_id: s3, project_id: alpha, name: Review}
  - {id: t1, schedule_id: s2, project_id: alpha, name: Build}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, schedulesOf(snap))
}
