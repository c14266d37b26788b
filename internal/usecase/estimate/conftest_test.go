package estimate

import (
	"context"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// mockExps implements ExperimentReader for tests.
type mockExps struct {
	getFn func(ctx context.Context, name string) (domexp.Experiment, error)
}

func (m *mockExps) Get(ctx context.Context, name string) (domexp.Experiment, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return domexp.Experiment{}, domain.ErrNotFound
}

// mockSamples implements SampleReader for tests.
type mockSamples struct {
	listFn func(ctx context.Context, experiment string) ([]sample.Sample, error)
}

func (m *mockSamples) List(ctx context.Context, experiment string) ([]sample.Sample, error) {
	if m.listFn != nil {
		return m.listFn(ctx, experiment)
	}
	return nil, nil
}

// mockEstimates implements Repository for tests.
type mockEstimates struct {
	saveFn   func(ctx context.Context, est bias.Estimate) error
	getFn    func(ctx context.Context, experiment, method string) (bias.Estimate, error)
	deleteFn func(ctx context.Context, experiment string) error
	saved    []bias.Estimate
}

func (m *mockEstimates) Save(ctx context.Context, est bias.Estimate) error {
	m.saved = append(m.saved, est)
	if m.saveFn != nil {
		return m.saveFn(ctx, est)
	}
	return nil
}

func (m *mockEstimates) Get(ctx context.Context, experiment, method string) (bias.Estimate, error) {
	if m.getFn != nil {
		return m.getFn(ctx, experiment, method)
	}
	return bias.Estimate{}, domain.ErrEstimateNotFound
}

func (m *mockEstimates) Delete(ctx context.Context, experiment string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, experiment)
	}
	return nil
}
