package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Only failure paths run in-process; a successful serve blocks until a signal.
func TestServeCommand_Errors(t *testing.T) {
	path := writeSnapshot(t, "plan.yaml", testSnapshot)

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{"no store", []string{"serve"}, nil, "either --snapshot or --database-url must be provided"},
		{"zero weeks", []string{"serve", "--snapshot", path, "--weeks", "0"}, nil, "--weeks must be a positive integer"},
		{"bad jwt expiry", []string{"serve", "--snapshot", path}, map[string]string{"JWT_EXPIRATION_HOURS": "soon"}, "invalid JWT_EXPIRATION_HOURS"},
		{"bad timeout", []string{"serve", "--snapshot", path, "--advisory-timeout", "-1s"}, nil, "'advisory_timeout' must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
