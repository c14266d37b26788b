// Package biascal estimates and corrects taxon-specific measurement bias in
// mock community experiments. The Client is the embedded SDK entry point;
// EstimateBias and Predict work on in-memory data without a database.
package biascal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seqlab-cloud/biascal/internal/db"
	dbRedis "github.com/seqlab-cloud/biascal/internal/db/redis"
	estimaterepo "github.com/seqlab-cloud/biascal/internal/repository/estimate"
	experimentrepo "github.com/seqlab-cloud/biascal/internal/repository/experiment"
	samplerepo "github.com/seqlab-cloud/biascal/internal/repository/sample"
	estimateuc "github.com/seqlab-cloud/biascal/internal/usecase/estimate"
	experimentuc "github.com/seqlab-cloud/biascal/internal/usecase/experiment"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the biascal SDK entry point.
type Client struct {
	store       db.Store
	experiments *experimentuc.Service
	estimates   *estimateuc.Service
}

// New creates a biascal Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("biascal: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("biascal: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("biascal: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	expRepo := experimentrepo.New(store)
	sampleRepo := samplerepo.New(store)
	estRepo := estimaterepo.New(store)
	if cfg.keyPrefix != "" {
		expRepo = expRepo.WithKeyPrefix(cfg.keyPrefix)
		sampleRepo = sampleRepo.WithKeyPrefix(cfg.keyPrefix)
		estRepo = estRepo.WithKeyPrefix(cfg.keyPrefix)
	}

	expSvc := experimentuc.New(expRepo, sampleRepo, estRepo)
	if cfg.maxBatchSize > 0 {
		expSvc = expSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	estSvc := estimateuc.New(expRepo, sampleRepo, estRepo)
	if cfg.bootstrapSeed != 0 {
		estSvc = estSvc.WithSeed(cfg.bootstrapSeed)
	}

	return &Client{
		store:       store,
		experiments: expSvc,
		estimates:   estSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// CreateExperiment registers a named mock community with its ordered taxa.
func (c *Client) CreateExperiment(ctx context.Context, name string, taxa []string) (Experiment, error) {
	exp, err := c.experiments.Create(ctx, name, taxa)
	if err != nil {
		return Experiment{}, err
	}
	return experimentFromDomain(exp), nil
}

// GetExperiment retrieves an experiment by name.
func (c *Client) GetExperiment(ctx context.Context, name string) (Experiment, error) {
	exp, err := c.experiments.Get(ctx, name)
	if err != nil {
		return Experiment{}, err
	}
	return experimentFromDomain(exp), nil
}

// ListExperiments returns all experiments.
func (c *Client) ListExperiments(ctx context.Context) ([]Experiment, error) {
	exps, err := c.experiments.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Experiment, len(exps))
	for i, e := range exps {
		out[i] = experimentFromDomain(e)
	}
	return out, nil
}

// DeleteExperiment removes an experiment together with its samples and
// stored estimates.
func (c *Client) DeleteExperiment(ctx context.Context, name string) error {
	return c.experiments.Delete(ctx, name)
}

// AddSamples validates and upserts samples into an experiment. Samples with
// an already-stored id are overwritten.
func (c *Client) AddSamples(ctx context.Context, experiment string, samples []Sample) error {
	exp, err := c.experiments.Get(ctx, experiment)
	if err != nil {
		return err
	}
	converted, err := samplesToDomain(exp.Taxa(), samples)
	if err != nil {
		return err
	}
	return c.experiments.AddSamples(ctx, experiment, converted)
}

// ListSamples returns the stored samples of an experiment.
func (c *Client) ListSamples(ctx context.Context, experiment string) ([]Sample, error) {
	exp, err := c.experiments.Get(ctx, experiment)
	if err != nil {
		return nil, err
	}
	samples, err := c.experiments.ListSamples(ctx, experiment)
	if err != nil {
		return nil, err
	}
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = sampleFromDomain(exp.Taxa(), s)
	}
	return out, nil
}

// RunEstimate fits the bias over the experiment's stored samples and stores
// the result. bootstrapReps > 0 adds percentile intervals.
func (c *Client) RunEstimate(
	ctx context.Context, experiment, method string, bootstrapReps int,
) (Estimate, error) {
	est, err := c.estimates.Estimate(ctx, experiment, method, bootstrapReps)
	if err != nil {
		return Estimate{}, err
	}
	return estimateFromDomain(est), nil
}

// LatestEstimate returns the stored estimate for (experiment, method).
func (c *Client) LatestEstimate(ctx context.Context, experiment, method string) (Estimate, error) {
	est, err := c.estimates.Latest(ctx, experiment, method)
	if err != nil {
		return Estimate{}, err
	}
	return estimateFromDomain(est), nil
}

// PredictActual corrects an observed composition with the stored
// (experiment, method) estimate: close(observed / bias).
func (c *Client) PredictActual(
	ctx context.Context, experiment, method string, observed map[string]float64,
) (map[string]float64, error) {
	exp, err := c.experiments.Get(ctx, experiment)
	if err != nil {
		return nil, err
	}
	vec, err := orderedVector(exp.Taxa(), observed)
	if err != nil {
		return nil, err
	}
	pred, err := c.estimates.Predict(ctx, experiment, method, vec)
	if err != nil {
		return nil, err
	}
	return taxonMap(exp.Taxa(), pred), nil
}
