package main

import (
	"context"
	"fmt"

	"github.com/jonathan/capacity-planner/internal/observability"
	"github.com/spf13/cobra"
)

var (
	matchTask     string
	matchSchedule string
	matchOut      string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank resources against a task",
	Long:  `Scores every active resource against a task by skill overlap and remaining weekly capacity over the task's dates, best match first.`,
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchTask, "task", "t", "", "Task ID (required)")
	matchCmd.Flags().StringVarP(&matchSchedule, "schedule", "s", "", "Schedule ID the task belongs to")
	matchCmd.Flags().StringVarP(&matchOut, "out", "o", "", "Output file path (defaults to stdout)")

	if err := matchCmd.MarkFlagRequired("task"); err != nil {
		panic(fmt.Sprintf("failed to mark task flag as required: %v", err))
	}

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	b, err := openBackend(ctx, settings)
	if err != nil {
		return err
	}
	defer b.Close()

	matches, err := b.engine().MatchResourcesToTask(ctx, matchTask, matchSchedule)
	if err != nil {
		return fmt.Errorf("failed to match resources: %w", err)
	}

	if settings.Verbose {
		task, err := b.store.GetTask(ctx, matchTask, matchSchedule)
		if err == nil && task != nil {
			observability.NewPrinter(cmd.ErrOrStderr()).PrintMatches(task, matches)
		}
	}

	return writeJSON(cmd.OutOrStdout(), matchOut, matches)
}

