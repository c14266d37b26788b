package estimate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	"github.com/seqlab-cloud/biascal/internal/domain/coda"
	"github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// Method selects the loss the bias fit minimizes.
type Method string

const (
	// MethodRSS minimizes the sum of squared Aitchison-distance residuals.
	// Closed form: the per-taxon mean of CLR discrepancies.
	MethodRSS Method = "rss"
	// MethodMedian is the robust variant: the per-taxon median of CLR
	// discrepancies, with the same closure anchor as MethodRSS.
	MethodMedian Method = "median"
)

// ParseMethod maps a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodRSS, MethodMedian:
		return Method(s), nil
	case "":
		return MethodRSS, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMethod, s)
	}
}

// Fit runs the estimator over an in-memory sample set without touching
// storage or metrics. Embedding callers use it for one-shot calibration.
func Fit(set *sample.Set, method Method) (bias.Vector, error) {
	return estimateBias(set, method)
}

// estimateBias fits the single multiplicative per-taxon bias explaining the
// observed/actual discrepancy across all samples of the set.
//
// The fit works in CLR coordinates, where Aitchison distance is plain
// Euclidean distance: the discrepancy of sample s is
// d_s = clr(observed_s) - clr(actual_s), and the RSS minimizer of
// Σ_s ‖clr(observed_s) - clr(actual_s) - clr(b)‖² is the coordinate-wise
// mean of the d_s. The result is mapped back through exp and closed, so the
// returned vector always sums to 1. The choice of CLR makes the result
// independent of any reference taxon.
func estimateBias(set *sample.Set, method Method) (bias.Vector, error) {
	switch method {
	case MethodRSS, MethodMedian:
	default:
		return bias.Vector{}, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	taxa := set.Taxa()
	samples := set.Samples()

	// discrepancies[t] collects d_s[t] across samples.
	discrepancies := make([][]float64, len(taxa))
	for t := range discrepancies {
		discrepancies[t] = make([]float64, len(samples))
	}
	for si := range samples {
		obs := coda.CLR(samples[si].Observed())
		act := coda.CLR(samples[si].Actual())
		for t := range taxa {
			discrepancies[t][si] = obs[t] - act[t]
		}
	}

	clrBias := make([]float64, len(taxa))
	for t, d := range discrepancies {
		switch method {
		case MethodRSS:
			clrBias[t] = stat.Mean(d, nil)
		case MethodMedian:
			sort.Float64s(d)
			clrBias[t] = stat.Quantile(0.5, stat.LinInterp, d, nil)
		}
	}

	return bias.NewVector(taxa, coda.InvCLR(clrBias))
}
