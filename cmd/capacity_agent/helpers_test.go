package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/capacity-planner/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testSnapshot has r1 at 125% in the weeks of 2026-01-12 and 2026-01-19 when run on 2026-01-07.
const testSnapshot = `
resources:
  - {id: r1, name: Ada, role: backend, skills: [go, postgres], capacity_hours_per_week: 40}
  - {id: r2, name: Bo, role: frontend, skills: [react], capacity_hours_per_week: 40}
assignments:
  - {resource_id: r1, task_id: t1, schedule_id: s1, start_date: 2026-01-05, end_date: 2026-01-30, hours_per_week: 30}
  - {resource_id: r1, task_id: t2, schedule_id: s1, start_date: 2026-01-12, end_date: 2026-01-23, hours_per_week: 20}
  - {resource_id: r2, task_id: t3, schedule_id: s2, start_date: 2026-01-05, end_date: 2026-02-27, hours_per_week: 10}
tasks:
  - {id: t1, schedule_id: s1, project_id: alpha, name: Build API}
  - {id: t2, schedule_id: s1, project_id: alpha, name: Migrate postgres schema, start_date: 2026-01-12, end_date: 2026-01-23}
  - {id: t3, schedule_id: s2, project_id: beta, name: React dashboard}
`

// writeSnapshot writes content to a temp file and returns its path.
func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	return path
}

// execute runs the root command in-process and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	resetFlags(rootCmd)
	settings = config.Config{}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so package-level flag variables do not
// leak between in-process runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
