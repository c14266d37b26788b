package chi

import (
	"fmt"
	"time"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	domsample "github.com/seqlab-cloud/biascal/internal/domain/sample"
	estimateuc "github.com/seqlab-cloud/biascal/internal/usecase/estimate"
	healthuc "github.com/seqlab-cloud/biascal/internal/usecase/health"
)

// errorCode identifies an error class in API responses.
type errorCode string

const (
	codeBadRequest            errorCode = "bad_request"
	codeValidationFailed      errorCode = "validation_failed"
	codeUnknownMethod         errorCode = "unknown_method"
	codeExperimentNotFound    errorCode = "experiment_not_found"
	codeEstimateNotFound      errorCode = "estimate_not_found"
	codeExperimentExists      errorCode = "experiment_already_exists"
	codeInternalError         errorCode = "internal_error"
	codeUnauthorized          errorCode = "unauthorized"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type createExperimentRequest struct {
	Name string   `json:"name"`
	Taxa []string `json:"taxa"`
}

type experimentResponse struct {
	Name      string    `json:"name"`
	Taxa      []string  `json:"taxa"`
	CreatedAt time.Time `json:"created_at"`
}

type experimentListResponse struct {
	Items []experimentResponse `json:"items"`
}

// sampleDTO carries compositions keyed by taxon name. The ordered internal
// representation is reconstructed against the experiment's taxa.
type sampleDTO struct {
	ID       string             `json:"id"`
	Observed map[string]float64 `json:"observed"`
	Actual   map[string]float64 `json:"actual"`
}

type addSamplesRequest struct {
	Samples []sampleDTO `json:"samples"`
}

type addSamplesResponse struct {
	Added int `json:"added"`
}

type sampleListResponse struct {
	Items []sampleDTO `json:"items"`
}

type estimateRequest struct {
	Method        string `json:"method,omitempty"`
	BootstrapReps int    `json:"bootstrap_reps,omitempty"`
}

type estimateResponse struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Method     string             `json:"method"`
	Bias       map[string]float64 `json:"bias"`
	IntervalLo map[string]float64 `json:"interval_lo,omitempty"`
	IntervalHi map[string]float64 `json:"interval_hi,omitempty"`
	Samples    int                `json:"samples"`
	CreatedAt  time.Time          `json:"created_at"`
}

type predictRequest struct {
	Method   string             `json:"method,omitempty"`
	Observed map[string]float64 `json:"observed"`
}

type predictResponse struct {
	Method    string             `json:"method"`
	Predicted map[string]float64 `json:"predicted"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func experimentToDTO(e domexp.Experiment) experimentResponse {
	return experimentResponse{
		Name:      e.Name(),
		Taxa:      e.Taxa(),
		CreatedAt: time.UnixMilli(e.CreatedAt()).UTC(),
	}
}

// vectorFromMap reorders a taxon-keyed composition into the experiment's
// taxon order. Every experiment taxon must be present and no extras allowed.
func vectorFromMap(taxa []string, m map[string]float64) ([]float64, error) {
	if len(m) != len(taxa) {
		return nil, fmt.Errorf("%w: composition has %d taxa, experiment has %d",
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

func vectorToMap(taxa []string, v []float64) map[string]float64 {
	if len(v) != len(taxa) {
		return nil
	}
	m := make(map[string]float64, len(taxa))
	for i, tx := range taxa {
		m[tx] = v[i]
	}
	return m
}

func sampleFromDTO(taxa []string, dto sampleDTO) (domsample.Sample, error) {
	if dto.ID == "" {
		return domsample.Sample{}, fmt.Errorf("%w: sample id is required", domain.ErrInvalidInput)
	}
	obs, err := vectorFromMap(taxa, dto.Observed)
	if err != nil {
		return domsample.Sample{}, fmt.Errorf("sample %q observed: %w", dto.ID, err)
	}
	act, err := vectorFromMap(taxa, dto.Actual)
	if err != nil {
		return domsample.Sample{}, fmt.Errorf("sample %q actual: %w", dto.ID, err)
	}
	return domsample.New(dto.ID, obs, act), nil
}

func samplesFromDTO(taxa []string, dtos []sampleDTO) ([]domsample.Sample, error) {
	out := make([]domsample.Sample, len(dtos))
	for i, dto := range dtos {
		s, err := sampleFromDTO(taxa, dto)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func sampleToDTO(taxa []string, s domsample.Sample) sampleDTO {
	return sampleDTO{
		ID:       s.ID(),
		Observed: vectorToMap(taxa, s.Observed()),
		Actual:   vectorToMap(taxa, s.Actual()),
	}
}

func estimateToDTO(est bias.Estimate) estimateResponse {
	v := est.Vector()
	taxa := v.Taxa()
	resp := estimateResponse{
		ID:         est.ID(),
		Experiment: est.Experiment(),
		Method:     est.Method(),
		Bias:       vectorToMap(taxa, v.Values()),
		Samples:    est.Samples(),
		CreatedAt:  time.UnixMilli(est.CreatedAt()).UTC(),
	}
	if len(est.Lo()) > 0 {
		resp.IntervalLo = vectorToMap(taxa, est.Lo())
		resp.IntervalHi = vectorToMap(taxa, est.Hi())
	}
	return resp
}

func healthToDTO(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(report.Status), Checks: checks}
}

// methodOrDefault resolves the effective method name for responses.
func methodOrDefault(name string) string {
	m, err := estimateuc.ParseMethod(name)
	if err != nil {
		return name
	}
	return string(m)
}
