package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/jobdesc/internal/metrics"
)

// Instrumented records latency and failures of every call to the wrapped
// Generator.
type Instrumented struct {
	next     Generator
	provider string
	stats    *Stats
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewInstrumented(next Generator, provider string, stats *Stats, m *metrics.Metrics, log *slog.Logger) *Instrumented {
	return &Instrumented{next: next, provider: provider, stats: stats, metrics: m, log: log}
}

func (g *Instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := g.next.Generate(ctx, req)
	elapsed := time.Since(start)

	if g.stats != nil {
		g.stats.Record(elapsed.Milliseconds(), err != nil)
	}
	g.metrics.LLMRequest(g.provider, elapsed, err, IsRetryable(err))
	if err != nil && ctx.Err() == nil {
		g.log.Warn("llm request failed", "provider", g.provider, "duration_ms", elapsed.Milliseconds(), "error", err)
	} else {
		g.log.Debug("llm request", "provider", g.provider, "duration_ms", elapsed.Milliseconds(), "bytes", len(out))
	}
	return out, err
}
