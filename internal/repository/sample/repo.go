// Package sample persists samples as one JSON document per sample.
package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/seqlab-cloud/biascal/internal/db"
	domsample "github.com/seqlab-cloud/biascal/internal/domain/sample"
)

// store is the consumer interface for sample documents (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
}

// Repo implements usecase/experiment.SampleRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a sample repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: "biascal:"}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

func (r *Repo) sampleKey(experiment, id string) string {
	return r.prefix + "sample:" + experiment + ":" + id
}

// sampleRow is the JSON-serializable representation of a sample.
type sampleRow struct {
	ID       string    `json:"id"`
	Observed []float64 `json:"observed"`
	Actual   []float64 `json:"actual"`
}

// Upsert writes samples in one pipelined round-trip, overwriting existing ids.
func (r *Repo) Upsert(ctx context.Context, experiment string, samples []domsample.Sample) error {
	items := make([]db.JSONSetItem, len(samples))
	for i := range samples {
		s := &samples[i]
		data, err := json.Marshal(sampleRow{
			ID:       s.ID(),
			Observed: s.Observed(),
			Actual:   s.Actual(),
		})
		if err != nil {
			return fmt.Errorf("marshal sample %s: %w", s.ID(), err)
		}
		items[i] = db.JSONSetItem{
			Key:  r.sampleKey(experiment, s.ID()),
			Path: "$",
			Data: data,
		}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json set samples: %w", err)
	}
	return nil
}

// List returns the experiment's samples sorted by id for a stable order.
func (r *Repo) List(ctx context.Context, experiment string) ([]domsample.Sample, error) {
	keys, err := r.store.Scan(ctx, r.sampleKey(experiment, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan samples: %w", err)
	}
	if len(keys) == 0 {
		return []domsample.Sample{}, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json get samples: %w", err)
	}

	samples := make([]domsample.Sample, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			// Deleted between SCAN and JSON.GET
			continue
		}
		var row sampleRow
		if err := json.Unmarshal(doc, &row); err != nil {
			return nil, fmt.Errorf("unmarshal sample %s: %w", keys[i], err)
		}
		samples = append(samples, domsample.New(row.ID, row.Observed, row.Actual))
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].ID() < samples[j].ID()
	})
	return samples, nil
}

// DeleteAll removes every sample of an experiment.
func (r *Repo) DeleteAll(ctx context.Context, experiment string) error {
	keys, err := r.store.Scan(ctx, r.sampleKey(experiment, "*"))
	if err != nil {
		return fmt.Errorf("scan samples: %w", err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("del samples: %w", err)
	}
	return nil
}
