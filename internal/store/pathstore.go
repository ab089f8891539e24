package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/jobdesc/internal/pathstore"
)

// PathStore keeps descriptions in a pathstore service under
// jobs/<job id>/description.
type PathStore struct {
	client *pathstore.Client
	prefix string
}

func NewPathStore(client *pathstore.Client, prefix string) *PathStore {
	if prefix == "" {
		prefix = "jobs"
	}
	return &PathStore{client: client, prefix: prefix}
}

type pathstoreValue struct {
	Document           json.RawMessage `json:"document"`
	CompanyDescription string          `json:"company_description"`
	ContentHash        string          `json:"content_hash"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (p *PathStore) key(jobID string) string {
	return fmt.Sprintf("%s/%s/description", p.prefix, jobID)
}

func (p *PathStore) Save(ctx context.Context, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return p.client.PutNode(ctx, p.key(rec.JobID), pathstore.NodeRequest{
		Value: pathstoreValue{
			Document:           rec.Document,
			CompanyDescription: rec.CompanyDescription,
			ContentHash:        rec.ContentHash,
			UpdatedAt:          rec.UpdatedAt,
		},
		MergeMode:  "replace",
		MemoryType: "document",
		Source:     "jobdesc:" + rec.JobID,
	})
}

func (p *PathStore) Load(ctx context.Context, jobID string) (Record, error) {
	node, err := p.client.GetNode(ctx, p.key(jobID))
	if errors.Is(err, pathstore.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var v pathstoreValue
	if err := json.Unmarshal(node.Value, &v); err != nil {
		return Record{}, fmt.Errorf("decode description %s: %w", jobID, err)
	}
	return Record{
		JobID:              jobID,
		Document:           []byte(v.Document),
		CompanyDescription: v.CompanyDescription,
		ContentHash:        v.ContentHash,
		UpdatedAt:          v.UpdatedAt,
	}, nil
}

func (p *PathStore) Delete(ctx context.Context, jobID string) error {
	err := p.client.DeleteNode(ctx, p.key(jobID), false)
	if errors.Is(err, pathstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (p *PathStore) Close() error {
	p.client.Close()
	return nil
}
