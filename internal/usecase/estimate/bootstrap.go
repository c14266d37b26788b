package estimate

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// Percentile bounds for bootstrap intervals (central 95%).
const (
	bootstrapLoQuantile = 0.025
	bootstrapHiQuantile = 0.975
)

// FitIntervals bootstraps percentile intervals for Fit's result. reps must
// be positive.
func FitIntervals(
	set *sample.Set, method Method, reps int, seed int64,
) (lo, hi []float64, err error) {
	if reps <= 0 {
		return nil, nil, fmt.Errorf("bootstrap reps must be > 0, got %d", reps)
	}
	return bootstrapIntervals(set, method, reps, seed)
}

// bootstrapIntervals computes per-taxon percentile intervals for the closed
// bias values by resampling samples with replacement and re-running the
// estimator. Deterministic for a given (seed, reps) pair.
func bootstrapIntervals(
	set *sample.Set, method Method, reps int, seed int64,
) (lo, hi []float64, err error) {
	rng := rand.New(rand.NewSource(seed))
	n := set.Len()
	taxa := len(set.Taxa())

	// replicates[t] collects the closed bias value of taxon t per replicate.
	replicates := make([][]float64, taxa)
	for t := range replicates {
		replicates[t] = make([]float64, reps)
	}

	idx := make([]int, n)
	for r := 0; r < reps; r++ {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		b, err := estimateBias(set.Subset(idx), method)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap replicate %d: %w", r, err)
		}
		for t, v := range b.Values() {
			replicates[t][r] = v
		}
	}

	lo = make([]float64, taxa)
	hi = make([]float64, taxa)
	for t := range replicates {
		sort.Float64s(replicates[t])
		lo[t] = stat.Quantile(bootstrapLoQuantile, stat.Empirical, replicates[t], nil)
		hi[t] = stat.Quantile(bootstrapHiQuantile, stat.Empirical, replicates[t], nil)
	}
	return lo, hi, nil
}
