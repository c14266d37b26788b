// Package estimate fits the per-taxon multiplicative bias of an experiment
// and serves bias-corrected predictions from stored estimates.
package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
	"github.com/seqlab-cloud/biascal/internal/metrics"
)

// Service handles bias estimation and prediction for experiments.
type Service struct {
	exps      ExperimentReader
	samples   SampleReader
	estimates Repository
	seed      int64
	now       func() int64
}

// New creates an estimation service.
func New(exps ExperimentReader, samples SampleReader, estimates Repository) *Service {
	return &Service{
		exps:      exps,
		samples:   samples,
		estimates: estimates,
		seed:      time.Now().UnixNano(),
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// WithSeed fixes the bootstrap RNG seed for reproducible intervals.
func (s *Service) WithSeed(seed int64) *Service {
	s.seed = seed
	return s
}

// Estimate loads the experiment's samples, fits the bias under the given
// method, optionally bootstraps percentile intervals (reps > 0), stores and
// returns the estimate. A stored estimate for the same (experiment, method)
// pair is overwritten.
func (s *Service) Estimate(
	ctx context.Context, experiment, methodName string, bootstrapReps int,
) (bias.Estimate, error) {
	method, err := ParseMethod(methodName)
	if err != nil {
		return bias.Estimate{}, err
	}
	if bootstrapReps < 0 {
		return bias.Estimate{}, fmt.Errorf("%w: bootstrap reps must be >= 0, got %d",
			domain.ErrInvalidInput, bootstrapReps)
	}

	exp, err := s.exps.Get(ctx, experiment)
	if err != nil {
		return bias.Estimate{}, fmt.Errorf("get experiment: %w", err)
	}

	samples, err := s.samples.List(ctx, experiment)
	if err != nil {
		return bias.Estimate{}, fmt.Errorf("list samples: %w", err)
	}
	set, err := sample.NewSet(exp.Taxa(), samples)
	if err != nil {
		return bias.Estimate{}, err
	}

	start := time.Now()
	b, err := estimateBias(set, method)
	if err != nil {
		metrics.EstimationsTotal.WithLabelValues(string(method), "error").Inc()
		return bias.Estimate{}, err
	}

	var lo, hi []float64
	if bootstrapReps > 0 {
		lo, hi, err = bootstrapIntervals(set, method, bootstrapReps, s.seed)
		if err != nil {
			metrics.EstimationsTotal.WithLabelValues(string(method), "error").Inc()
			return bias.Estimate{}, err
		}
	}

	metrics.EstimationDuration.WithLabelValues(string(method)).Observe(time.Since(start).Seconds())
	metrics.EstimationSampleSize.WithLabelValues(string(method)).Observe(float64(set.Len()))
	metrics.EstimationsTotal.WithLabelValues(string(method), "ok").Inc()

	est := bias.NewEstimate(
		uuid.NewString(), experiment, string(method), b, lo, hi, set.Len(), s.now(),
	)
	if err := s.estimates.Save(ctx, est); err != nil {
		return bias.Estimate{}, fmt.Errorf("save estimate: %w", err)
	}
	return est, nil
}

// Latest returns the stored estimate for (experiment, method).
func (s *Service) Latest(ctx context.Context, experiment, methodName string) (bias.Estimate, error) {
	method, err := ParseMethod(methodName)
	if err != nil {
		return bias.Estimate{}, err
	}
	est, err := s.estimates.Get(ctx, experiment, string(method))
	if err != nil {
		return bias.Estimate{}, fmt.Errorf("get estimate: %w", err)
	}
	return est, nil
}

// Predict applies the stored (experiment, method) estimate to an observed
// composition: close(observed / bias). The observed vector must follow the
// experiment's taxon order.
func (s *Service) Predict(
	ctx context.Context, experiment, methodName string, observed []float64,
) ([]float64, error) {
	est, err := s.Latest(ctx, experiment, methodName)
	if err != nil {
		return nil, err
	}
	v := est.Vector()
	pred, err := v.Predict(observed)
	if err != nil {
		return nil, err
	}
	return pred, nil
}
