package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSnapshotCommand(t *testing.T) {
	path := writeSnapshot(t, "plan.yaml", testSnapshot)

	stdout, _, err := execute(t, "validate-snapshot", "--snapshot", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid: 2 resources, 3 assignments, 3 tasks")
}

func TestValidateSnapshotCommand_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "unknown resource",
			file:    "plan.yaml",
			content: "resources: []\nassignments:\n  - {resource_id: ghost, task_id: t1, schedule_id: s1, start_date: 2026-01-05, end_date: 2026-01-09, hours_per_week: 5}\n",
			wantErr: "ghost",
		},
		{
			name:    "unsupported extension",
			file:    "plan.txt",
			content: "resources: []",
			wantErr: "plan.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSnapshot(t, tt.file, tt.content)
			_, _, err := execute(t, "validate-snapshot", "--snapshot", path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, _, err := execute(t, "validate-snapshot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--snapshot is required")
}
