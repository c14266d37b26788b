// Package coda implements the compositional (Aitchison) geometry the bias
// estimator works in. A composition is a vector of strictly positive reals
// meaningful only up to positive scaling; Close fixes the representative
// whose entries sum to one.
package coda

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/seqlab-cloud/biascal/internal/domain"
)

// MinTaxa is the smallest taxon set a composition can range over.
// A one-entry composition always closes to exactly 1 and carries no ratio
// information.
const MinTaxa = 2

// Validate checks that x is a usable composition: at least MinTaxa entries,
// all strictly positive and finite.
func Validate(x []float64) error {
	if len(x) < MinTaxa {
		return fmt.Errorf("%w: composition needs at least %d entries, got %d",
			domain.ErrInvalidInput, MinTaxa, len(x))
	}
	for i, v := range x {
		if v <= 0 {
			return fmt.Errorf("%w: entry %d is %v, must be strictly positive",
				domain.ErrInvalidInput, i, v)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%w: entry %d is %v", domain.ErrInvalidInput, i, v)
		}
	}
	return nil
}

// Close normalizes x so its entries sum to 1. Idempotent; the input is not
// mutated.
func Close(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// CLR returns the centered log-ratio transform of x:
// clr(x)_i = log(x_i) - mean(log(x)). The result is reference-free: any
// positive rescaling of x maps to the same CLR coordinates.
func CLR(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log(v)
	}
	mean := floats.Sum(out) / float64(len(out))
	for i := range out {
		out[i] -= mean
	}
	return out
}

// InvCLR maps CLR coordinates back to the closed composition representative.
func InvCLR(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = math.Exp(v)
	}
	return Close(out)
}

// Perturb is the Aitchison group operation: the closed entrywise product.
func Perturb(x, y []float64) []float64 {
	out := make([]float64, len(x))
	floats.MulTo(out, x, y)
	return Close(out)
}

// Ratio is the inverse perturbation: the closed entrywise quotient x/y.
func Ratio(x, y []float64) []float64 {
	out := make([]float64, len(x))
	floats.DivTo(out, x, y)
	return Close(out)
}

// Dist returns the Aitchison distance between x and y, the Euclidean
// distance between their CLR representations.
func Dist(x, y []float64) float64 {
	return floats.Distance(CLR(x), CLR(y), 2)
}

// Uniform returns the closed all-ones composition of length n, the identity
// of the perturbation operation.
func Uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}
