// Package experiment persists experiment metadata as Redis hashes.
package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/seqlab-cloud/biascal/internal/domain"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
)

// DefaultKeyPrefix namespaces all biascal keys.
const DefaultKeyPrefix = "biascal:"

// store is the consumer interface for experiment metadata (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/experiment.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates an experiment repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

func (r *Repo) metaKey(name string) string {
	return r.prefix + "exp:" + name
}

// Create stores a new experiment, rejecting duplicates.
func (r *Repo) Create(ctx context.Context, exp domexp.Experiment) error {
	key := r.metaKey(exp.Name())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	fields, err := experimentToHash(exp)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset experiment %s: %w", exp.Name(), err)
	}
	return nil
}

// Get retrieves an experiment by name.
func (r *Repo) Get(ctx context.Context, name string) (domexp.Experiment, error) {
	m, err := r.store.HGetAll(ctx, r.metaKey(name))
	if err != nil {
		return domexp.Experiment{}, fmt.Errorf("hgetall experiment %s: %w", name, err)
	}
	if len(m) == 0 {
		return domexp.Experiment{}, domain.ErrNotFound
	}
	return experimentFromHash(m)
}

// List returns all experiments sorted by creation time, then name.
func (r *Repo) List(ctx context.Context) ([]domexp.Experiment, error) {
	keys, err := r.store.Scan(ctx, r.metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan experiments: %w", err)
	}
	if len(keys) == 0 {
		return []domexp.Experiment{}, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall experiments: %w", err)
	}

	exps := make([]domexp.Experiment, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL
			continue
		}
		exp, err := experimentFromHash(m)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}

	sort.Slice(exps, func(i, j int) bool {
		if exps[i].CreatedAt() != exps[j].CreatedAt() {
			return exps[i].CreatedAt() < exps[j].CreatedAt()
		}
		return exps[i].Name() < exps[j].Name()
	})
	return exps, nil
}

// Delete removes an experiment's metadata.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if err := r.store.Del(ctx, r.metaKey(name)); err != nil {
		return fmt.Errorf("del experiment %s: %w", name, err)
	}
	return nil
}
