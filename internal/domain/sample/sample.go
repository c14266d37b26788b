// Package sample holds the paired observed/actual measurements the bias
// estimator consumes.
package sample

import (
	"fmt"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/coda"
)

// Sample pairs one observed composition with its ground-truth counterpart,
// both indexed by the owning Set's taxon order.
type Sample struct {
	id       string
	observed []float64
	actual   []float64
}

// New creates a sample. Vectors are used as-is; validation happens when the
// sample joins a Set.
func New(id string, observed, actual []float64) Sample {
	return Sample{id: id, observed: observed, actual: actual}
}

// ID returns the sample identifier.
func (s *Sample) ID() string { return s.id }

// Observed returns the measured composition.
func (s *Sample) Observed() []float64 { return s.observed }

// Actual returns the ground-truth composition.
func (s *Sample) Actual() []float64 { return s.actual }

// Set is a validated group of samples over one shared taxon set. Every
// vector in the set has the same length and strictly positive entries, so
// downstream log-ratio math cannot produce -Inf or NaN.
type Set struct {
	taxa    []string
	samples []Sample
}

// NewSet validates taxa and samples and builds a Set.
// Requirements: at least coda.MinTaxa unique taxon names, a non-empty sample
// list, and per sample both vectors of matching length with strictly
// positive finite entries. Violations wrap domain.ErrInvalidInput.
func NewSet(taxa []string, samples []Sample) (*Set, error) {
	if len(taxa) < coda.MinTaxa {
		return nil, fmt.Errorf("%w: need at least %d taxa, got %d",
			domain.ErrInvalidInput, coda.MinTaxa, len(taxa))
	}
	seen := make(map[string]struct{}, len(taxa))
	for _, tx := range taxa {
		if tx == "" {
			return nil, fmt.Errorf("%w: empty taxon name", domain.ErrInvalidInput)
		}
		if _, dup := seen[tx]; dup {
			return nil, fmt.Errorf("%w: duplicate taxon %q", domain.ErrInvalidInput, tx)
		}
		seen[tx] = struct{}{}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty sample set", domain.ErrInvalidInput)
	}

	for i := range samples {
		s := &samples[i]
		if len(s.observed) != len(taxa) {
			return nil, fmt.Errorf("%w: sample %q observed has %d entries, want %d",
				domain.ErrInvalidInput, s.id, len(s.observed), len(taxa))
		}
		if len(s.actual) != len(taxa) {
			return nil, fmt.Errorf("%w: sample %q actual has %d entries, want %d",
				domain.ErrInvalidInput, s.id, len(s.actual), len(taxa))
		}
		if err := coda.Validate(s.observed); err != nil {
			return nil, fmt.Errorf("sample %q observed: %w", s.id, err)
		}
		if err := coda.Validate(s.actual); err != nil {
			return nil, fmt.Errorf("sample %q actual: %w", s.id, err)
		}
	}

	return &Set{taxa: taxa, samples: samples}, nil
}

// Taxa returns the shared taxon order.
func (st *Set) Taxa() []string { return st.taxa }

// Samples returns the samples in insertion order.
func (st *Set) Samples() []Sample { return st.samples }

// Len returns the number of samples.
func (st *Set) Len() int { return len(st.samples) }

// Subset builds a new Set from the samples at the given indexes, reusing the
// taxon order. Indexes may repeat; used by bootstrap resampling.
func (st *Set) Subset(idx []int) *Set {
	picked := make([]Sample, len(idx))
	for i, j := range idx {
		picked[i] = st.samples[j]
	}
	return &Set{taxa: st.taxa, samples: picked}
}
