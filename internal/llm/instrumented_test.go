package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dgallion1/jobdesc/internal/metrics"
)

func TestInstrumented_RecordsFailures(t *testing.T) {
	m := metrics.New()
	stats := NewStats(time.Hour)
	fail := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "", &RetryableError{StatusCode: 503, Message: "down"}
	})
	g := NewInstrumented(fail, "anthropic", stats, m, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := g.Generate(context.Background(), Request{Prompt: "x"})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error to pass through, got %v", err)
	}
	if snap := stats.Snapshot(); snap.Count != 1 || snap.Errors != 1 {
		t.Errorf("expected 1 failed sample, got %+v", snap)
	}
	if got := testutil.ToFloat64(m.LLMErrorsTotal.WithLabelValues("anthropic", "true")); got != 1 {
		t.Errorf("expected 1 retryable error, got %v", got)
	}
	if errors.Is(err, ErrEmptyResponse) {
		t.Error("unexpected error identity")
	}
}
