package experiment

import (
	"context"

	"github.com/seqlab-cloud/biascal/internal/domain"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	createFn func(ctx context.Context, exp domexp.Experiment) error
	getFn    func(ctx context.Context, name string) (domexp.Experiment, error)
	listFn   func(ctx context.Context) ([]domexp.Experiment, error)
	deleteFn func(ctx context.Context, name string) error
}

func (m *mockRepo) Create(ctx context.Context, exp domexp.Experiment) error {
	if m.createFn != nil {
		return m.createFn(ctx, exp)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, name string) (domexp.Experiment, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return domexp.Experiment{}, domain.ErrNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]domexp.Experiment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

// mockSampleRepo implements SampleRepository for tests.
type mockSampleRepo struct {
	upsertFn    func(ctx context.Context, experiment string, samples []sample.Sample) error
	listFn      func(ctx context.Context, experiment string) ([]sample.Sample, error)
	deleteAllFn func(ctx context.Context, experiment string) error
	upserted    []sample.Sample
}

func (m *mockSampleRepo) Upsert(ctx context.Context, experiment string, samples []sample.Sample) error {
	m.upserted = append(m.upserted, samples...)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, experiment, samples)
	}
	return nil
}

func (m *mockSampleRepo) List(ctx context.Context, experiment string) ([]sample.Sample, error) {
	if m.listFn != nil {
		return m.listFn(ctx, experiment)
	}
	return nil, nil
}

func (m *mockSampleRepo) DeleteAll(ctx context.Context, experiment string) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, experiment)
	}
	return nil
}

// mockEstimateDeleter implements EstimateDeleter for tests.
type mockEstimateDeleter struct {
	deleteFn func(ctx context.Context, experiment string) error
	deleted  []string
}

func (m *mockEstimateDeleter) Delete(ctx context.Context, experiment string) error {
	m.deleted = append(m.deleted, experiment)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, experiment)
	}
	return nil
}

// existingExp returns a repo whose Get always finds the named experiment.
func existingExp(taxa []string) *mockRepo {
	return &mockRepo{
		getFn: func(ctx context.Context, name string) (domexp.Experiment, error) {
			return domexp.Reconstruct(name, taxa, 0), nil
		},
	}
}
