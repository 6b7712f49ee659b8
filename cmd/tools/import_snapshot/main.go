// Command import_snapshot loads a JSON or YAML planning snapshot into PostgreSQL.
//
// Resources and tasks are upserted. Assignments are replaced per schedule, so importing
// the same snapshot twice leaves the database unchanged.
//
// Usage:
//
//	go run cmd/tools/import_snapshot/main.go path/to/plan.yaml
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/jonathan/capacity-planner/internal/db"
	"github.com/jonathan/capacity-planner/internal/snapshot"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: import_snapshot <snapshot.yaml|snapshot.json>")
		os.Exit(2)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	snap, err := snapshot.NewOsLoader().Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Snapshot Import ===")
	fmt.Println()

	failed := 0

	for _, r := range snap.Resources {
		if err := database.UpsertResource(ctx, r); err != nil {
			fmt.Printf("  ✗ resource %s: %v\n", r.ID, err)
			failed++
		}
	}
	fmt.Printf("  Resources: %d\n", len(snap.Resources))

	for _, sched := range schedulesOf(snap) {
		if err := database.UpsertSchedule(ctx, sched, ""); err != nil {
			fmt.Printf("  ✗ schedule %s: %v\n", sched, err)
			failed++
		}
	}

	for _, t := range snap.Tasks {
		if err := database.UpsertTask(ctx, t); err != nil {
			fmt.Printf("  ✗ task %s: %v\n", t.ID, err)
			failed++
		}
	}
	fmt.Printf("  Tasks: %d\n", len(snap.Tasks))

	replaced := int64(0)
	for _, sched := range schedulesOf(snap) {
		n, err := database.DeleteAssignmentsBySchedule(ctx, sched)
		if err != nil {
			fmt.Printf("  ✗ schedule %s: %v\n", sched, err)
			failed++
			continue
		}
		replaced += n
	}

	for _, a := range snap.Assignments {
		if err := database.CreateAssignment(ctx, a); err != nil {
			fmt.Printf("  ✗ assignment %s/%s: %v\n", a.ResourceID, a.TaskID, err)
			failed++
		}
	}
	fmt.Printf("  Assignments: %d (replaced %d)\n", len(snap.Assignments), replaced)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Failed: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// schedulesOf returns every schedule referenced by the snapshot, sorted.
func schedulesOf(snap *snapshot.Snapshot) []string {
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" {
			seen[id] = true
		}
	}
	for _, a := range snap.Assignments {
		add(a.ScheduleID)
	}
	for _, t := range snap.Tasks {
		add(t.ScheduleID)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

