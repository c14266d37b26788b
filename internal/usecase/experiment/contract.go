package experiment

import (
	"context"

	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// Repository defines the storage contract for experiments.
type Repository interface {
	Create(ctx context.Context, exp domexp.Experiment) error
	Get(ctx context.Context, name string) (domexp.Experiment, error)
	List(ctx context.Context) ([]domexp.Experiment, error)
	Delete(ctx context.Context, name string) error
}

// SampleRepository defines the storage contract for an experiment's samples.
type SampleRepository interface {
	Upsert(ctx context.Context, experiment string, samples []sample.Sample) error
	List(ctx context.Context, experiment string) ([]sample.Sample, error)
	DeleteAll(ctx context.Context, experiment string) error
}

// EstimateDeleter removes stored estimates when their experiment goes away.
type EstimateDeleter interface {
	Delete(ctx context.Context, experiment string) error
}
