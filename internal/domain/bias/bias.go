// Package bias defines the estimated per-taxon multiplicative bias and its
// surrounding estimate record.
package bias

import (
	"fmt"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/coda"
)

// Vector is a closure-normalized per-taxon multiplicative bias:
// Observed ≈ Actual ⊕ Vector in Aitchison geometry. Values always sum to 1;
// the closure is the documented normalization anchor, so vectors from
// different runs compare directly.
type Vector struct {
	taxa   []string
	values []float64
}

// NewVector validates and closes values into a bias vector over taxa.
func NewVector(taxa []string, values []float64) (Vector, error) {
	if len(taxa) != len(values) {
		return Vector{}, fmt.Errorf("%w: %d taxa but %d values",
			domain.ErrInvalidInput, len(taxa), len(values))
	}
	if err := coda.Validate(values); err != nil {
		return Vector{}, err
	}
	return Vector{taxa: taxa, values: coda.Close(values)}, nil
}

// Taxa returns the taxon order.
func (v *Vector) Taxa() []string { return v.taxa }

// Values returns the closed bias values, index-aligned with Taxa.
func (v *Vector) Values() []float64 { return v.values }

// Len returns the number of taxa.
func (v *Vector) Len() int { return len(v.taxa) }

// Predict returns the bias-corrected estimate close(observed / v) of the
// actual composition behind an observed measurement.
func (v *Vector) Predict(observed []float64) ([]float64, error) {
	if len(observed) != len(v.values) {
		return nil, fmt.Errorf("%w: observed has %d entries, bias has %d",
			domain.ErrInvalidInput, len(observed), len(v.values))
	}
	if err := coda.Validate(observed); err != nil {
		return nil, err
	}
	return coda.Ratio(observed, v.values), nil
}

// Estimate is one stored estimation result for an experiment.
type Estimate struct {
	id         string
	experiment string
	method     string
	vector     Vector
	lo         []float64
	hi         []float64
	samples    int
	createdAt  int64
}

// NewEstimate creates an estimate record. lo/hi are optional bootstrap
// interval bounds aligned with the vector's taxa; pass nil when bootstrap
// was not run.
func NewEstimate(
	id, experiment, method string, vector Vector,
	lo, hi []float64, samples int, createdAt int64,
) Estimate {
	return Estimate{
		id: id, experiment: experiment, method: method, vector: vector,
		lo: lo, hi: hi, samples: samples, createdAt: createdAt,
	}
}

// ID returns the estimate identifier.
func (e *Estimate) ID() string { return e.id }

// Experiment returns the owning experiment name.
func (e *Estimate) Experiment() string { return e.experiment }

// Method returns the estimation method name.
func (e *Estimate) Method() string { return e.method }

// Vector returns the estimated bias vector.
func (e *Estimate) Vector() Vector { return e.vector }

// Lo returns the lower bootstrap interval bounds, nil when absent.
func (e *Estimate) Lo() []float64 { return e.lo }

// Hi returns the upper bootstrap interval bounds, nil when absent.
func (e *Estimate) Hi() []float64 { return e.hi }

// Samples returns how many samples the estimate was fitted on.
func (e *Estimate) Samples() int { return e.samples }

// CreatedAt returns the creation time as a unix timestamp.
func (e *Estimate) CreatedAt() int64 { return e.createdAt }
