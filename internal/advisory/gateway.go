package advisory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonathan/capacity-planner/internal/metrics"
	"github.com/jonathan/capacity-planner/internal/types"
)

// DefaultTimeout bounds a single advisory call.
const DefaultTimeout = 10 * time.Second

// Gateway wraps a Provider with the skip, timeout and swallow-on-failure rules.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGateway creates a gateway. A nil provider behaves like NoopProvider and a
// non-positive timeout falls back to DefaultTimeout.
func NewGateway(provider Provider, timeout time.Duration) *Gateway {
	if provider == nil {
		provider = NoopProvider{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: provider, timeout: timeout, logger: slog.Default()}
}

// WithLogger sets the logger used for advisory failures.
func (g *Gateway) WithLogger(logger *slog.Logger) *Gateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Timeout returns the per-call budget.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

type reply struct {
	suggestions []types.RebalanceSuggestion
	err         error
}

// Advise returns suggestions for the request, or nil when there is nothing to advise on
// or the provider fails, times out or is unconfigured. It never returns an error.
func (g *Gateway) Advise(ctx context.Context, req Request) []types.RebalanceSuggestion {
	if g == nil || len(req.Bottlenecks) == 0 {
		metrics.AdvisoryRequestsTotal.WithLabelValues(metrics.AdvisorySkipped).Inc()
		return nil
	}

	start := time.Now()
	defer func() { metrics.AdvisoryDurationSeconds.Observe(time.Since(start).Seconds()) }()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// buffered: the provider may finish after Advise has returned
	done := make(chan reply, 1)
	go func() {
		suggestions, err := g.provider.Suggest(callCtx, req)
		done <- reply{suggestions: suggestions, err: err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-callCtx.Done():
		r = reply{err: callCtx.Err()}
	}

	switch {
	case r.err == nil:
		metrics.AdvisoryRequestsTotal.WithLabelValues(metrics.AdvisoryOK).Inc()
		return r.suggestions
	case errors.Is(r.err, ErrUnavailable):
		metrics.AdvisoryRequestsTotal.WithLabelValues(metrics.AdvisorySkipped).Inc()
		g.logger.Debug("rebalance advisor unavailable", "request_id", req.ID)
	default:
		metrics.AdvisoryRequestsTotal.WithLabelValues(metrics.AdvisoryFailed).Inc()
		g.logger.Warn("rebalance advisory failed",
			"request_id", req.ID,
			"bottlenecks", len(req.Bottlenecks),
			"timeout", g.timeout,
			"error", r.err)
	}
	return nil
}
