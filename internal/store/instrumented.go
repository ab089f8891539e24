package store

import (
	"context"

	"github.com/dgallion1/jobdesc/internal/metrics"
)

type instrumented struct {
	next    Store
	metrics *metrics.Metrics
}

// WithMetrics counts every operation on next.
func WithMetrics(next Store, m *metrics.Metrics) Store {
	return &instrumented{next: next, metrics: m}
}

func (s *instrumented) Save(ctx context.Context, rec Record) error {
	err := s.next.Save(ctx, rec)
	s.metrics.StoreOp("save", err)
	return err
}

func (s *instrumented) Load(ctx context.Context, jobID string) (Record, error) {
	rec, err := s.next.Load(ctx, jobID)
	s.metrics.StoreOp("load", err)
	return rec, err
}

func (s *instrumented) Delete(ctx context.Context, jobID string) error {
	err := s.next.Delete(ctx, jobID)
	s.metrics.StoreOp("delete", err)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
