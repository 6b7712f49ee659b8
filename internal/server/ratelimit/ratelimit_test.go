package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter, _ := newTestLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	// one token every 6s
	if rateInfo.RetryAfter < 5900*time.Millisecond || rateInfo.RetryAfter > 6100*time.Millisecond {
		t.Errorf("Expected retry after about 6s, got %v", rateInfo.RetryAfter)
	}
	if !rateInfo.ResetTime.After(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow("c", "/test", "GET")
	}
	if allowed, _ := limiter.Allow("c", "/test", "GET"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	// one token every 6s
	clock.Advance(7 * time.Second)
	if allowed, _ := limiter.Allow("c", "/test", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _ := limiter.Allow("c", "/test", "GET"); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.9": true},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.9", "/health", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/forecast", "GET"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_EndpointRuleSharedAcrossPaths(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/projects/", Method: "GET", Limit: 2, Window: time.Minute},
		},
	})
	defer limiter.Stop()

	limiter.Allow("c", "/projects/alpha/forecast", "GET")
	limiter.Allow("c", "/projects/beta/forecast", "GET")
	allowed, info := limiter.Allow("c", "/projects/gamma/workloads", "GET")
	if allowed {
		t.Error("Expected third request under the same rule to be denied")
	}
	if info.Limit != 2 {
		t.Errorf("Expected limit 2, got %d", info.Limit)
	}

	// other clients and unmatched endpoints are independent
	if allowed, _ := limiter.Allow("d", "/projects/alpha/forecast", "GET"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
	if allowed, _ := limiter.Allow("c", "/schedules/s1/tasks/t1/matches", "GET"); !allowed {
		t.Error("Expected default-limited endpoint to be allowed")
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("c", "/health", "GET"); !allowed {
			t.Fatal("Expected health checks to be unlimited")
		}
		if allowed, _ := limiter.Allow("c", "/metrics", "GET"); !allowed {
			t.Fatal("Expected metrics scrapes to be unlimited")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		allowedCount int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}
	clock.Advance(2 * time.Hour)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	limiter.cleanupBuckets(clock.Now().Add(-time.Hour))
	if got := limiter.size(); got != 5 {
		t.Errorf("Expected 5 buckets after cleanup, got %d", got)
	}
}

func TestLimiter_Burst(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/forecast", Method: "GET", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/forecast", "GET"); !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/forecast", "GET"); allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestStop_Idempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	if got := MatchEndpoint("/forecast", "GET", configs); got == nil || got.Limit != 60 {
		t.Errorf("Expected /forecast rule, got %+v", got)
	}
	if got := MatchEndpoint("/projects/alpha/forecast", "GET", configs); got == nil || got.Path != "/projects/" {
		t.Errorf("Expected /projects/ prefix rule, got %+v", got)
	}
	if got := MatchEndpoint("/projects/alpha/forecast", "POST", configs); got != nil {
		t.Errorf("Expected no rule for POST, got %+v", got)
	}
	if got := MatchEndpoint("/health", "GET", configs); got == nil || got.Limit != 0 {
		t.Errorf("Expected unlimited health rule, got %+v", got)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	if cfg.DefaultLimit != 42 || cfg.DefaultWindow != 30*time.Second {
		t.Errorf("Unexpected defaults: %d %v", cfg.DefaultLimit, cfg.DefaultWindow)
	}
	if !cfg.Whitelist["10.0.0.2"] {
		t.Error("Expected whitelist to be parsed")
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if LoadConfig().Enabled {
		t.Error("Expected limiter to be disabled")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_DEFAULT_LIMIT", "RATE_LIMIT_DEFAULT_WINDOW", "RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if !cfg.Enabled || cfg.DefaultLimit != 1000 || cfg.DefaultWindow != time.Minute || cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if len(cfg.Whitelist) != 0 || len(cfg.Blacklist) != 0 {
		t.Errorf("Expected empty lists, got %v %v", cfg.Whitelist, cfg.Blacklist)
	}
	if len(cfg.EndpointConfigs) != len(DefaultEndpointConfigs()) {
		t.Error("Expected default endpoint rules")
	}
}
