// Package experiment handles experiment lifecycle and sample ingestion.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/coda"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// Service handles experiment CRUD and sample ingestion.
type Service struct {
	repo      Repository
	samples   SampleRepository
	estimates EstimateDeleter
	maxBatch  int
	now       func() int64
}

// DefaultMaxBatchSize caps one sample ingestion request.
const DefaultMaxBatchSize = 500

// New creates an experiment service.
func New(repo Repository, samples SampleRepository, estimates EstimateDeleter) *Service {
	return &Service{
		repo:      repo,
		samples:   samples,
		estimates: estimates,
		maxBatch:  DefaultMaxBatchSize,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// WithMaxBatchSize overrides the per-request sample cap.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatch = n
	}
	return s
}

// Create validates and stores a new experiment.
func (s *Service) Create(ctx context.Context, name string, taxa []string) (domexp.Experiment, error) {
	exp, err := domexp.New(name, taxa, s.now())
	if err != nil {
		return domexp.Experiment{}, err
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		return domexp.Experiment{}, fmt.Errorf("create experiment: %w", err)
	}
	return exp, nil
}

// Get retrieves an experiment by name.
func (s *Service) Get(ctx context.Context, name string) (domexp.Experiment, error) {
	exp, err := s.repo.Get(ctx, name)
	if err != nil {
		return domexp.Experiment{}, fmt.Errorf("get experiment: %w", err)
	}
	return exp, nil
}

// List returns all experiments.
func (s *Service) List(ctx context.Context) ([]domexp.Experiment, error) {
	exps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return exps, nil
}

// Delete removes an experiment together with its samples and estimates.
func (s *Service) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.Get(ctx, name); err != nil {
		return fmt.Errorf("get experiment: %w", err)
	}
	if err := s.samples.DeleteAll(ctx, name); err != nil {
		return fmt.Errorf("delete samples: %w", err)
	}
	if err := s.estimates.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete estimates: %w", err)
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete experiment: %w", err)
	}
	return nil
}

// AddSamples validates samples against the experiment's taxon set and
// upserts them. Samples with an already-stored id are overwritten.
func (s *Service) AddSamples(ctx context.Context, name string, samples []sample.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples given", domain.ErrInvalidInput)
	}
	if len(samples) > s.maxBatch {
		return fmt.Errorf("%w: batch of %d exceeds limit %d",
			domain.ErrInvalidInput, len(samples), s.maxBatch)
	}

	exp, err := s.repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("get experiment: %w", err)
	}

	seen := make(map[string]struct{}, len(samples))
	for i := range samples {
		sm := &samples[i]
		if sm.ID() == "" {
			return fmt.Errorf("%w: sample %d has no id", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[sm.ID()]; dup {
			return fmt.Errorf("%w: duplicate sample id %q in batch", domain.ErrInvalidInput, sm.ID())
		}
		seen[sm.ID()] = struct{}{}

		if len(sm.Observed()) != len(exp.Taxa()) || len(sm.Actual()) != len(exp.Taxa()) {
			return fmt.Errorf("%w: sample %q vectors must have %d entries",
				domain.ErrInvalidInput, sm.ID(), len(exp.Taxa()))
		}
		if err := coda.Validate(sm.Observed()); err != nil {
			return fmt.Errorf("sample %q observed: %w", sm.ID(), err)
		}
		if err := coda.Validate(sm.Actual()); err != nil {
			return fmt.Errorf("sample %q actual: %w", sm.ID(), err)
		}
	}

	if err := s.samples.Upsert(ctx, name, samples); err != nil {
		return fmt.Errorf("upsert samples: %w", err)
	}
	return nil
}

// ListSamples returns the stored samples of an experiment.
func (s *Service) ListSamples(ctx context.Context, name string) ([]sample.Sample, error) {
	if _, err := s.repo.Get(ctx, name); err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	samples, err := s.samples.List(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	return samples, nil
}
