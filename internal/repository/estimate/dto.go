package estimate

import (
	"encoding/json"
	"fmt"

	dombias "github.com/seqlab-cloud/biascal/internal/domain/bias"
)

// estimateRow is the JSON-serializable representation of an estimate.
type estimateRow struct {
	ID         string    `json:"id"`
	Experiment string    `json:"experiment"`
	Method     string    `json:"method"`
	Taxa       []string  `json:"taxa"`
	Values     []float64 `json:"values"`
	Lo         []float64 `json:"lo,omitempty"`
	Hi         []float64 `json:"hi,omitempty"`
	Samples    int       `json:"samples"`
	CreatedAt  int64     `json:"created_at"`
}

func estimateToJSON(est dombias.Estimate) ([]byte, error) {
	v := est.Vector()
	data, err := json.Marshal(estimateRow{
		ID:         est.ID(),
		Experiment: est.Experiment(),
		Method:     est.Method(),
		Taxa:       v.Taxa(),
		Values:     v.Values(),
		Lo:         est.Lo(),
		Hi:         est.Hi(),
		Samples:    est.Samples(),
		CreatedAt:  est.CreatedAt(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal estimate: %w", err)
	}
	return data, nil
}

func estimateFromJSON(data []byte) (dombias.Estimate, error) {
	var row estimateRow
	if err := json.Unmarshal(data, &row); err != nil {
		return dombias.Estimate{}, fmt.Errorf("unmarshal estimate: %w", err)
	}
	v, err := dombias.NewVector(row.Taxa, row.Values)
	if err != nil {
		return dombias.Estimate{}, fmt.Errorf("hydrate bias vector: %w", err)
	}
	return dombias.NewEstimate(
		row.ID, row.Experiment, row.Method, v,
		row.Lo, row.Hi, row.Samples, row.CreatedAt,
	), nil
}
