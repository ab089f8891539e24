package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusGenerating, "generating"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob(Request{Title: "Engineer"}, "post-1")
	if len(job.ID) != 26 {
		t.Errorf("expected 26-char ID, got %q", job.ID)
	}
	snap := job.Snapshot()
	if snap.Status != StatusQueued || snap.PostID != "post-1" || snap.Title != "Engineer" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("generating: timeout")
	job.AddError("generating: 503")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "generating: timeout" {
		t.Errorf("expected first error %q, got %q", "generating: timeout", snap.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Document != nil {
		t.Error("expected no document before a result is set")
	}
}

func TestJob_Result(t *testing.T) {
	job := &Job{ID: "result-test"}
	if _, ok := job.Result(); ok {
		t.Fatal("expected no result yet")
	}
	doc := doctree.Document{Children: []doctree.Block{
		&doctree.Paragraph{Children: []doctree.Inline{doctree.Text{Value: "x"}}},
	}}
	job.SetResult(doc, "abc")
	got, ok := job.Result()
	if !ok || len(got.Children) != 1 {
		t.Fatalf("expected stored result, got %+v ok=%v", got, ok)
	}
	if snap := job.Snapshot(); snap.ContentHash != "abc" || snap.Document == nil {
		t.Errorf("expected hash and document in snapshot, got %+v", snap)
	}
}

func TestJob_IncrAttempts(t *testing.T) {
	job := &Job{ID: "attempts"}
	job.IncrAttempts()
	job.IncrAttempts()
	if got := job.Snapshot().Attempts; got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestULID(t *testing.T) {
	var zero, ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("unexpected zero encoding %q", got)
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("unexpected max encoding %q", got)
	}

	prev := generateULID()
	for range 100 {
		next := generateULID()
		if next <= prev {
			t.Fatalf("expected increasing IDs, got %q after %q", next, prev)
		}
		prev = next
	}
}
