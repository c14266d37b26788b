package biascal

import (
	"fmt"

	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domsample "github.com/seqlab-cloud/biascal/internal/domain/sample"
	estimateuc "github.com/seqlab-cloud/biascal/internal/usecase/estimate"
)

// EstimateBias fits a per-taxon multiplicative bias from in-memory samples,
// without a database. The returned Estimate carries no ID and is not stored.
// bootstrapReps > 0 adds percentile intervals seeded by seed.
func EstimateBias(
	taxa []string, samples []Sample, method string, bootstrapReps int, seed int64,
) (Estimate, error) {
	m, err := estimateuc.ParseMethod(method)
	if err != nil {
		return Estimate{}, err
	}

	converted, err := samplesToDomain(taxa, samples)
	if err != nil {
		return Estimate{}, err
	}
	set, err := domsample.NewSet(taxa, converted)
	if err != nil {
		return Estimate{}, err
	}

	vec, err := estimateuc.Fit(set, m)
	if err != nil {
		return Estimate{}, err
	}

	out := Estimate{
		Method:  string(m),
		Taxa:    vec.Taxa(),
		Bias:    taxonMap(vec.Taxa(), vec.Values()),
		Samples: set.Len(),
	}

	if bootstrapReps > 0 {
		lo, hi, err := estimateuc.FitIntervals(set, m, bootstrapReps, seed)
		if err != nil {
			return Estimate{}, err
		}
		out.IntervalLo = taxonMap(vec.Taxa(), lo)
		out.IntervalHi = taxonMap(vec.Taxa(), hi)
	}

	return out, nil
}

// Predict corrects an observed composition with a fitted estimate:
// close(observed / bias). Taxon order follows est.Taxa.
func Predict(est Estimate, observed map[string]float64) (map[string]float64, error) {
	biasVec, err := orderedVector(est.Taxa, est.Bias)
	if err != nil {
		return nil, fmt.Errorf("estimate bias: %w", err)
	}
	v, err := bias.NewVector(est.Taxa, biasVec)
	if err != nil {
		return nil, err
	}
	obs, err := orderedVector(est.Taxa, observed)
	if err != nil {
		return nil, fmt.Errorf("observed: %w", err)
	}
	pred, err := v.Predict(obs)
	if err != nil {
		return nil, err
	}
	return taxonMap(est.Taxa, pred), nil
}
