package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks a single description generation.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`
	// PostID names the job post the result is saved under. Empty skips
	// saving.
	PostID string `json:"post_id,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Request  Request `json:"request"`
	Attempts int     `json:"attempts"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	document *doctree.Document
	errors   []string
}

// NewJob returns a queued job with a fresh ID.
func NewJob(req Request, postID string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		PostID:    postID,
		Status:    StatusQueued,
		Phase:     "queued",
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one call to the generator.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Attempts++
	j.UpdatedAt = time.Now()
}

// SetResult records the generated document.
func (j *Job) SetResult(doc doctree.Document, hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.document = &doc
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// Result returns the generated document once available.
func (j *Job) Result() (doctree.Document, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.document == nil {
		return doctree.Document{}, false
	}
	return *j.document, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	PostID      string            `json:"post_id,omitempty"`
	Status      JobStatus         `json:"status"`
	Phase       string            `json:"phase"`
	Title       string            `json:"title"`
	Attempts    int               `json:"attempts"`
	ContentHash string            `json:"content_hash,omitempty"`
	Errors      []string          `json:"errors"`
	Document    *doctree.Document `json:"document,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		PostID:      j.PostID,
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Request.Title,
		Attempts:    j.Attempts,
		ContentHash: j.ContentHash,
		Errors:      errs,
		Document:    j.document,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
