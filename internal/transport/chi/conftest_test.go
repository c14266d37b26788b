package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/bias"
	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
	domsample "github.com/seqlab-cloud/biascal/internal/domain/sample"
	estimateuc "github.com/seqlab-cloud/biascal/internal/usecase/estimate"
	experimentuc "github.com/seqlab-cloud/biascal/internal/usecase/experiment"
	healthuc "github.com/seqlab-cloud/biascal/internal/usecase/health"
)

// In-memory repositories backing the handler tests.

type memExpRepo struct {
	exps map[string]domexp.Experiment
}

func newMemExpRepo() *memExpRepo {
	return &memExpRepo{exps: make(map[string]domexp.Experiment)}
}

func (r *memExpRepo) Create(_ context.Context, exp domexp.Experiment) error {
	if _, ok := r.exps[exp.Name()]; ok {
		return domain.ErrAlreadyExists
	}
	r.exps[exp.Name()] = exp
	return nil
}

func (r *memExpRepo) Get(_ context.Context, name string) (domexp.Experiment, error) {
	exp, ok := r.exps[name]
	if !ok {
		return domexp.Experiment{}, domain.ErrNotFound
	}
	return exp, nil
}

func (r *memExpRepo) List(_ context.Context) ([]domexp.Experiment, error) {
	out := make([]domexp.Experiment, 0, len(r.exps))
	for _, exp := range r.exps {
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *memExpRepo) Delete(_ context.Context, name string) error {
	delete(r.exps, name)
	return nil
}

type memSampleRepo struct {
	samples map[string]map[string]domsample.Sample
}

func newMemSampleRepo() *memSampleRepo {
	return &memSampleRepo{samples: make(map[string]map[string]domsample.Sample)}
}

func (r *memSampleRepo) Upsert(_ context.Context, experiment string, samples []domsample.Sample) error {
	m, ok := r.samples[experiment]
	if !ok {
		m = make(map[string]domsample.Sample)
		r.samples[experiment] = m
	}
	for _, s := range samples {
		m[s.ID()] = s
	}
	return nil
}

func (r *memSampleRepo) List(_ context.Context, experiment string) ([]domsample.Sample, error) {
	out := make([]domsample.Sample, 0, len(r.samples[experiment]))
	for _, s := range r.samples[experiment] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memSampleRepo) DeleteAll(_ context.Context, experiment string) error {
	delete(r.samples, experiment)
	return nil
}

type memEstimateRepo struct {
	ests map[string]bias.Estimate
}

func newMemEstimateRepo() *memEstimateRepo {
	return &memEstimateRepo{ests: make(map[string]bias.Estimate)}
}

func (r *memEstimateRepo) Save(_ context.Context, est bias.Estimate) error {
	r.ests[est.Experiment()+"/"+est.Method()] = est
	return nil
}

func (r *memEstimateRepo) Get(_ context.Context, experiment, method string) (bias.Estimate, error) {
	est, ok := r.ests[experiment+"/"+method]
	if !ok {
		return bias.Estimate{}, domain.ErrEstimateNotFound
	}
	return est, nil
}

func (r *memEstimateRepo) Delete(_ context.Context, experiment string) error {
	for k, est := range r.ests {
		if est.Experiment() == experiment {
			delete(r.ests, k)
		}
	}
	return nil
}

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, pingErr error) http.Handler {
	t.Helper()

	expRepo := newMemExpRepo()
	sampleRepo := newMemSampleRepo()
	estRepo := newMemEstimateRepo()

	expSvc := experimentuc.New(expRepo, sampleRepo, estRepo)
	estSvc := estimateuc.New(expRepo, sampleRepo, estRepo).WithSeed(42)
	healthSvc := healthuc.New(&fakePinger{err: pingErr})

	server := NewServer(expSvc, estSvc, healthSvc, zap.NewNop())
	r := gochi.NewRouter()
	server.Routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
