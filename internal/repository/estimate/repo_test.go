package estimate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/seqlab-cloud/biascal/internal/db"
	"github.com/seqlab-cloud/biascal/internal/domain"
	dombias "github.com/seqlab-cloud/biascal/internal/domain/bias"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn      func(ctx context.Context, key string) ([]byte, error)
	setFn      func(ctx context.Context, key string, value []byte) error
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
	delMultiFn func(ctx context.Context, keys []string) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) error {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return nil
}

func fixtureEstimate(t *testing.T) dombias.Estimate {
	t.Helper()
	v, err := dombias.NewVector([]string{"a", "b"}, []float64{3, 1})
	if err != nil {
		t.Fatalf("build vector: %v", err)
	}
	return dombias.NewEstimate("id-1", "mock1", "rss", v,
		[]float64{0.7, 0.2}, []float64{0.8, 0.3}, 5, 1700000000)
}

func TestSaveGet_RoundTrip(t *testing.T) {
	stored := map[string][]byte{}
	s := &mockStore{
		setFn: func(ctx context.Context, key string, value []byte) error {
			stored[key] = value
			return nil
		},
		getFn: func(ctx context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
	}
	repo := New(s)

	want := fixtureEstimate(t)
	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stored["biascal:estimate:mock1:rss"]; !ok {
		t.Fatalf("estimate stored under wrong key: %v", stored)
	}

	got, err := repo.Get(context.Background(), "mock1", "rss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != want.ID() || got.Method() != want.Method() || got.Samples() != want.Samples() {
		t.Errorf("metadata lost: %+v", got)
	}
	gv, wv := got.Vector(), want.Vector()
	for i := range wv.Values() {
		if math.Abs(gv.Values()[i]-wv.Values()[i]) > 1e-15 {
			t.Errorf("values[%d] = %v, want %v", i, gv.Values()[i], wv.Values()[i])
		}
	}
	if len(got.Lo()) != 2 || len(got.Hi()) != 2 {
		t.Errorf("intervals lost: lo=%v hi=%v", got.Lo(), got.Hi())
	}
}

func TestGet_Missing(t *testing.T) {
	_, err := New(&mockStore{}).Get(context.Background(), "mock1", "rss")
	if !errors.Is(err, domain.ErrEstimateNotFound) {
		t.Fatalf("expected ErrEstimateNotFound, got %v", err)
	}
}

func TestDelete_AllMethods(t *testing.T) {
	var deleted []string
	s := &mockStore{
		scanFn: func(ctx context.Context, pattern string) ([]string, error) {
			if pattern != "biascal:estimate:mock1:*" {
				return nil, errors.New("wrong pattern " + pattern)
			}
			return []string{"biascal:estimate:mock1:rss", "biascal:estimate:mock1:median"}, nil
		},
		delMultiFn: func(ctx context.Context, keys []string) error {
			deleted = keys
			return nil
		},
	}

	if err := New(s).Delete(context.Background(), "mock1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted %v", deleted)
	}
}
