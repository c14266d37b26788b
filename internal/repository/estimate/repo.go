// Package estimate persists bias estimates as JSON values keyed by
// (experiment, method).
package estimate

import (
	"context"
	"errors"
	"fmt"

	"github.com/seqlab-cloud/biascal/internal/db"
	"github.com/seqlab-cloud/biascal/internal/domain"
	dombias "github.com/seqlab-cloud/biascal/internal/domain/bias"
)

// store is the consumer interface for estimate values (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
}

// Repo implements usecase/estimate.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates an estimate repository.
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

func (r *Repo) estimateKey(experiment, method string) string {
	return r.prefix + "estimate:" + experiment + ":" + method
}

// Save stores an estimate, replacing any previous one for the same
// (experiment, method) pair.
func (r *Repo) Save(ctx context.Context, est dombias.Estimate) error {
	data, err := estimateToJSON(est)
	if err != nil {
		return err
	}
	key := r.estimateKey(est.Experiment(), est.Method())
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set estimate %s: %w", key, err)
	}
	return nil
}

// Get retrieves the stored estimate for (experiment, method).
func (r *Repo) Get(ctx context.Context, experiment, method string) (dombias.Estimate, error) {
	data, err := r.store.Get(ctx, r.estimateKey(experiment, method))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dombias.Estimate{}, domain.ErrEstimateNotFound
		}
		return dombias.Estimate{}, fmt.Errorf("get estimate: %w", err)
	}
	return estimateFromJSON(data)
}

// Delete removes every stored estimate of an experiment.
func (r *Repo) Delete(ctx context.Context, experiment string) error {
	keys, err := r.store.Scan(ctx, r.estimateKey(experiment, "*"))
	if err != nil {
		return fmt.Errorf("scan estimates: %w", err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("del estimates: %w", err)
	}
	return nil
}
