package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig reads RATE_LIMIT_* environment variables. Unparseable values fall back to
// the zero value of their type, as viper does.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("RATE_LIMIT")
	v.AutomaticEnv()

	v.SetDefault("enabled", true)
	v.SetDefault("default_limit", 1000)
	v.SetDefault("default_window", time.Minute)
	v.SetDefault("cleanup_interval", 5*time.Minute)

	if !v.GetBool("enabled") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("default_limit"),
		DefaultWindow:   v.GetDuration("default_window"),
		CleanupInterval: v.GetDuration("cleanup_interval"),
		Whitelist:       parseIPList(v.GetString("whitelist")),
		Blacklist:       parseIPList(v.GetString("blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Forecasts may call the advisory model; keep these strictest
		{Path: "/forecast", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/projects/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},

		// Matching is local computation only
		{Path: "/schedules/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 50},

		// /health and /metrics are unlimited, see MatchEndpoint
	}
}

// parseIPList parses a comma-separated list of client IDs into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
