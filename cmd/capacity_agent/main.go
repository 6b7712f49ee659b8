// Package main provides the entry point for the capacity planning CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "capacity_agent",
	Short: "Resource workload forecasting and optimization",
	Long: `capacity_agent forecasts weekly resource utilization, flags bottlenecks and burnout risk,
and ranks people against tasks by skill fit and availability.

Planning data comes from PostgreSQL (--database-url) or a JSON/YAML snapshot (--snapshot).
Values can also be set in a config file (--config) or through CAPACITY_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().String("snapshot", "", "Path to a JSON or YAML planning snapshot")
	rootCmd.PersistentFlags().String("llm-provider", "", "Advisory LLM provider: gemini, openai or ollama (empty disables suggestions)")
	rootCmd.PersistentFlags().String("llm-model", "", "Model used for rebalance suggestions")
	rootCmd.PersistentFlags().String("api-key", "", "LLM API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	rootCmd.PersistentFlags().String("advisory-timeout", "", "Budget for one advisory call, e.g. 10s")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
