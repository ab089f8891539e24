// Package store persists job descriptions as canonical document JSON.
package store

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/sanitize"
)

// ErrNotFound is returned when no description is stored for a job.
var ErrNotFound = errors.New("description not found")

// Record is one stored description.
type Record struct {
	JobID              string
	Document           []byte
	CompanyDescription string
	ContentHash        string
	UpdatedAt          time.Time
}

// Store saves and loads descriptions keyed by job ID.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, jobID string) (Record, error)
	Delete(ctx context.Context, jobID string) error
	Close() error
}

// NewRecord builds the record written for doc. The document is validated and
// encoded canonically; the company description is sanitized.
func NewRecord(jobID string, doc doctree.Document, companyHTML string) (Record, error) {
	if jobID == "" {
		return Record{}, fmt.Errorf("job id is required")
	}
	data, err := doctree.Marshal(doc)
	if err != nil {
		return Record{}, err
	}
	return Record{
		JobID:              jobID,
		Document:           data,
		CompanyDescription: sanitize.Sanitize(companyHTML),
		ContentHash:        ContentHashHex(data),
		UpdatedAt:          time.Now().UTC(),
	}, nil
}

// Decode parses the stored document.
func (r Record) Decode() (doctree.Document, error) {
	return doctree.Unmarshal(r.Document)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
