package estimate

import (
	"context"

	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// ExperimentReader reads experiments for taxon-set lookups.
type ExperimentReader interface {
	Get(ctx context.Context, name string) (domexp.Experiment, error)
}

// SampleReader reads the stored samples of an experiment.
type SampleReader interface {
	List(ctx context.Context, experiment string) ([]sample.Sample, error)
}

// Repository defines the storage contract for estimates.
type Repository interface {
	Save(ctx context.Context, est bias.Estimate) error
	Get(ctx context.Context, experiment, method string) (bias.Estimate, error)
	Delete(ctx context.Context, experiment string) error
}
