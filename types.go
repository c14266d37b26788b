package biascal

import (
	"fmt"
	"time"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	domsample "github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// Methods accepted by estimation calls. An empty method means MethodRSS.
const (
	MethodRSS    = "rss"
	MethodMedian = "median"
)

// Experiment is a named mock community: a fixed, ordered taxon set.
type Experiment struct {
	Name      string
	Taxa      []string
	CreatedAt time.Time
}

// Sample pairs one observed composition with its ground truth, both keyed
// by taxon name. Every taxon of the owning experiment must be present with
// a strictly positive value.
type Sample struct {
	ID       string
	Observed map[string]float64
	Actual   map[string]float64
}

// Estimate is a fitted per-taxon multiplicative bias. Bias values are closed
// (sum to 1); IntervalLo/IntervalHi are present only when the estimate was
// bootstrapped.
type Estimate struct {
	ID         string
	Experiment string
	Method     string
	Taxa       []string
	Bias       map[string]float64
	IntervalLo map[string]float64
	IntervalHi map[string]float64
	Samples    int
	CreatedAt  time.Time
}

func experimentFromDomain(e domexp.Experiment) Experiment {
	return Experiment{
		Name:      e.Name(),
		Taxa:      e.Taxa(),
		CreatedAt: time.UnixMilli(e.CreatedAt()).UTC(),
	}
}

// orderedVector reorders a taxon-keyed composition into the given taxon
// order. Every taxon must be present and no extras allowed.
func orderedVector(taxa []string, m map[string]float64) ([]float64, error) {
	if len(m) != len(taxa) {
		return nil, fmt.Errorf("%w: composition has %d taxa, want %d",
			domain.ErrInvalidInput, len(m), len(taxa))
	}
	v := make([]float64, len(taxa))
	for i, tx := range taxa {
		val, ok := m[tx]
		if !ok {
			return nil, fmt.Errorf("%w: missing taxon %q", domain.ErrInvalidInput, tx)
		}
		v[i] = val
	}
	return v, nil
}

func taxonMap(taxa []string, v []float64) map[string]float64 {
	m := make(map[string]float64, len(taxa))
	for i, tx := range taxa {
		m[tx] = v[i]
	}
	return m
}

func sampleToDomain(taxa []string, s Sample) (domsample.Sample, error) {
	if s.ID == "" {
		return domsample.Sample{}, fmt.Errorf("%w: sample id is required", domain.ErrInvalidInput)
	}
	obs, err := orderedVector(taxa, s.Observed)
	if err != nil {
		return domsample.Sample{}, fmt.Errorf("sample %q observed: %w", s.ID, err)
	}
	act, err := orderedVector(taxa, s.Actual)
	if err != nil {
		return domsample.Sample{}, fmt.Errorf("sample %q actual: %w", s.ID, err)
	}
	return domsample.New(s.ID, obs, act), nil
}

func samplesToDomain(taxa []string, samples []Sample) ([]domsample.Sample, error) {
	out := make([]domsample.Sample, len(samples))
	for i, s := range samples {
		ds, err := sampleToDomain(taxa, s)
		if err != nil {
			return nil, err
		}
		out[i] = ds
	}
	return out, nil
}

func sampleFromDomain(taxa []string, s domsample.Sample) Sample {
	return Sample{
		ID:       s.ID(),
		Observed: taxonMap(taxa, s.Observed()),
		Actual:   taxonMap(taxa, s.Actual()),
	}
}

func estimateFromDomain(est bias.Estimate) Estimate {
	v := est.Vector()
	taxa := v.Taxa()
	out := Estimate{
		ID:         est.ID(),
		Experiment: est.Experiment(),
		Method:     est.Method(),
		Taxa:       taxa,
		Bias:       taxonMap(taxa, v.Values()),
		Samples:    est.Samples(),
		CreatedAt:  time.UnixMilli(est.CreatedAt()).UTC(),
	}
	if len(est.Lo()) > 0 {
		out.IntervalLo = taxonMap(taxa, est.Lo())
		out.IntervalHi = taxonMap(taxa, est.Hi())
	}
	return out
}
