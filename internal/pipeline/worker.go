package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/llm"
	"github.com/dgallion1/jobdesc/internal/metrics"
	"github.com/dgallion1/jobdesc/internal/store"
)

// Worker processes a single generation job.
type Worker struct {
	gen     llm.Generator
	store   store.Store
	metrics *metrics.Metrics
	log     *slog.Logger
	retry   RetryPolicy
	backoff func(attempt int) time.Duration
}

// NewWorker returns a worker. st may be nil, in which case results are only
// kept on the job.
func NewWorker(gen llm.Generator, st store.Store, m *metrics.Metrics, log *slog.Logger) *Worker {
	return &Worker{
		gen:     gen,
		store:   st,
		metrics: m,
		log:     log,
		retry:   DefaultRetry,
		backoff: DefaultRetry.Delay,
	}
}

// Process generates, converts and optionally saves the description for job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "post_id", job.PostID)

	// Phase 1: Generate
	job.SetStatus(StatusGenerating, "generating")
	raw, err := w.generate(ctx, job, log)
	if err != nil {
		log.Error("generation failed", "error", err)
		w.fail(job, "generating", err)
		return
	}

	// Phase 2: Convert
	g, err := ParseGenerated(raw)
	if err != nil {
		log.Error("parse failed", "error", err)
		w.fail(job, "parsing", err)
		return
	}
	doc := g.Document()
	if len(doc.Children) == 0 {
		w.fail(job, "parsing", errors.New("model returned an empty description"))
		return
	}
	data, err := doctree.Marshal(doc)
	if err != nil {
		log.Error("generated document invalid", "error", err)
		w.fail(job, "parsing", err)
		return
	}
	job.SetResult(doc, store.ContentHashHex(data))
	log.Info("description generated", "blocks", len(doc.Children), "attempts", job.Snapshot().Attempts)

	// Phase 3: Store
	if job.PostID != "" && w.store != nil {
		job.SetStatus(StatusStoring, "storing")
		if err := w.save(ctx, job.PostID, doc); err != nil {
			log.Error("store failed", "error", err)
			w.fail(job, "storing", err)
			return
		}
	}

	job.SetStatus(StatusCompleted, "done")
	w.metrics.GenerationJob(string(StatusCompleted))
}

func (w *Worker) generate(ctx context.Context, job *Job, log *slog.Logger) (string, error) {
	req := llm.Request{
		Prompt:            BuildPrompt(job.Request),
		SystemInstruction: SystemInstruction,
		Temperature:       Temperature,
	}
	var raw string
	var lastErr error
	for attempt := range w.retry.Attempts {
		job.IncrAttempts()
		raw, lastErr = w.gen.Generate(ctx, req)
		if lastErr == nil || !llm.IsRetryable(lastErr) || attempt == w.retry.Attempts-1 {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return raw, lastErr
}

// save keeps any company description already stored for the post.
func (w *Worker) save(ctx context.Context, postID string, doc doctree.Document) error {
	company := ""
	existing, err := w.store.Load(ctx, postID)
	switch {
	case err == nil:
		company = existing.CompanyDescription
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("load existing description: %w", err)
	}
	rec, err := store.NewRecord(postID, doc, company)
	if err != nil {
		return err
	}
	return w.store.Save(ctx, rec)
}

func (w *Worker) fail(job *Job, phase string, err error) {
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	job.SetStatus(StatusFailed, phase)
	w.metrics.GenerationJob(string(StatusFailed))
}
