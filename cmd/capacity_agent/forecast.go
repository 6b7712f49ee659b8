package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/capacity-planner/internal/forecast"
	"github.com/jonathan/capacity-planner/internal/metrics"
	"github.com/jonathan/capacity-planner/internal/observability"
	"github.com/jonathan/capacity-planner/internal/types"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

// pushJobName labels metrics sent to a Pushgateway.
const pushJobName = "capacity_agent"

var (
	forecastProject   string
	forecastWeeks     int
	forecastOut       string
	forecastNow       string
	forecastWorkloads bool
	forecastPushURL   string
	forecastCallerID  string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast bottlenecks, burnout risk and capacity",
	Long: `Computes weekly utilization for every resource assigned to a project (or the whole
portfolio when --project is omitted) and reports bottlenecks, burnout risks, the capacity
forecast and, when an LLM provider is configured, rebalance suggestions.

The result is written as JSON to --out, or to stdout.`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVarP(&forecastProject, "project", "p", "", "Project ID (empty for the whole portfolio)")
	forecastCmd.Flags().IntVarP(&forecastWeeks, "weeks", "w", 0, "Weeks ahead to forecast (defaults to the configured horizon, then 8)")
	forecastCmd.Flags().StringVarP(&forecastOut, "out", "o", "", "Output file path (defaults to stdout)")
	forecastCmd.Flags().StringVar(&forecastNow, "now", "", "Forecast as of this date (YYYY-MM-DD)")
	forecastCmd.Flags().BoolVar(&forecastWorkloads, "workloads", false, "Output the per-resource weekly series instead of the forecast")
	forecastCmd.Flags().StringVar(&forecastPushURL, "push-url", "", "Pushgateway URL to push run metrics to")
	forecastCmd.Flags().StringVar(&forecastCallerID, "caller", "cli", "Caller ID recorded in logs")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	weeks := settings.WeeksAhead
	if cmd.Flags().Changed("weeks") {
		if forecastWeeks < 1 {
			return fmt.Errorf("--weeks must be a positive integer, got %d", forecastWeeks)
		}
		weeks = forecastWeeks
	}

	opts, err := clockOptions(forecastNow)
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, settings)
	if err != nil {
		return err
	}
	defer b.Close()
	engine := b.engine(opts...)

	if forecastWorkloads {
		workloads, err := engine.Workloads(ctx, forecastProject, weeks)
		if err != nil {
			return fmt.Errorf("failed to compute workloads: %w", err)
		}
		if workloads == nil {
			workloads = []types.ResourceWorkload{}
		}
		return writeJSON(cmd.OutOrStdout(), forecastOut, workloads)
	}

	result, err := engine.ForecastBottlenecks(ctx, forecastProject, weeks, forecastCallerID)
	if err != nil {
		return fmt.Errorf("failed to forecast: %w", err)
	}

	if settings.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintForecast(result)
	}

	if err := writeJSON(cmd.OutOrStdout(), forecastOut, result); err != nil {
		return err
	}
	if forecastOut != "" {
		slog.Info("forecast written", "path", forecastOut, "bottlenecks", len(result.Bottlenecks))
	}

	if forecastPushURL != "" {
		if err := push.New(forecastPushURL, pushJobName).Gatherer(metrics.Registry).Push(); err != nil {
			// the forecast is already written; push failures are only logged
			slog.Warn("failed to push metrics", "url", forecastPushURL, "error", err)
		} else {
			slog.Debug("metrics pushed", "url", forecastPushURL)
		}
	}
	return nil
}

// clockOptions pins the engine clock to the start of date when it is set.
func clockOptions(date string) ([]forecast.Option, error) {
	if date == "" {
		return nil, nil
	}
	now, err := time.Parse(types.WeekKeyLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: expected YYYY-MM-DD", date)
	}
	return []forecast.Option{forecast.WithClock(func() time.Time { return now })}, nil
}
