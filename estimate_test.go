package biascal

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-9

func uniformSample(id string, observed map[string]float64) Sample {
	n := float64(len(observed))
	actual := make(map[string]float64, len(observed))
	for tx := range observed {
		actual[tx] = 1 / n
	}
	return Sample{ID: id, Observed: observed, Actual: actual}
}

func TestEstimateBias_RecoversKnownBias(t *testing.T) {
	taxa := []string{"A", "B", "C"}
	// Uniform truth measured through a bias that doubles A's share.
	observed := map[string]float64{"A": 0.5, "B": 0.25, "C": 0.25}
	samples := []Sample{
		uniformSample("s1", observed),
		uniformSample("s2", observed),
		uniformSample("s3", observed),
	}

	for _, method := range []string{MethodRSS, MethodMedian} {
		t.Run(method, func(t *testing.T) {
			est, err := EstimateBias(taxa, samples, method, 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if est.Method != method || est.Samples != 3 {
				t.Errorf("metadata: %+v", est)
			}
			want := map[string]float64{"A": 0.5, "B": 0.25, "C": 0.25}
			for tx, w := range want {
				if math.Abs(est.Bias[tx]-w) > tol {
					t.Errorf("bias %s: got %v, want %v", tx, est.Bias[tx], w)
				}
			}
		})
	}
}

func TestEstimateBias_DefaultMethodIsRSS(t *testing.T) {
	taxa := []string{"A", "B"}
	samples := []Sample{uniformSample("s1", map[string]float64{"A": 0.6, "B": 0.4})}

	est, err := EstimateBias(taxa, samples, "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Method != MethodRSS {
		t.Errorf("method: got %s", est.Method)
	}
}

func TestEstimateBias_Bootstrap(t *testing.T) {
	taxa := []string{"A", "B", "C"}
	samples := []Sample{
		uniformSample("s1", map[string]float64{"A": 0.5, "B": 0.3, "C": 0.2}),
		uniformSample("s2", map[string]float64{"A": 0.45, "B": 0.35, "C": 0.2}),
		uniformSample("s3", map[string]float64{"A": 0.55, "B": 0.25, "C": 0.2}),
	}

	est, err := EstimateBias(taxa, samples, MethodRSS, 200, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(est.IntervalLo) != 3 || len(est.IntervalHi) != 3 {
		t.Fatalf("intervals: lo %v, hi %v", est.IntervalLo, est.IntervalHi)
	}
	for _, tx := range taxa {
		if est.IntervalLo[tx] > est.IntervalHi[tx] {
			t.Errorf("interval %s inverted: [%v, %v]", tx, est.IntervalLo[tx], est.IntervalHi[tx])
		}
	}

	// Same seed, same intervals.
	again, err := EstimateBias(taxa, samples, MethodRSS, 200, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tx := range taxa {
		if again.IntervalLo[tx] != est.IntervalLo[tx] || again.IntervalHi[tx] != est.IntervalHi[tx] {
			t.Errorf("intervals not reproducible for %s", tx)
		}
	}
}

func TestEstimateBias_Errors(t *testing.T) {
	taxa := []string{"A", "B"}
	good := []Sample{uniformSample("s1", map[string]float64{"A": 0.6, "B": 0.4})}

	t.Run("unknown method", func(t *testing.T) {
		_, err := EstimateBias(taxa, good, "huber", 0, 0)
		if !errors.Is(err, ErrUnknownMethod) {
			t.Fatalf("got %v, want ErrUnknownMethod", err)
		}
	})

	t.Run("missing taxon", func(t *testing.T) {
		bad := []Sample{{
			ID:       "s1",
			Observed: map[string]float64{"A": 1},
			Actual:   map[string]float64{"A": 0.5, "B": 0.5},
		}}
		_, err := EstimateBias(taxa, bad, MethodRSS, 0, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("got %v, want ErrInvalidInput", err)
		}
	})

	t.Run("zero entry", func(t *testing.T) {
		bad := []Sample{{
			ID:       "s1",
			Observed: map[string]float64{"A": 1, "B": 0},
			Actual:   map[string]float64{"A": 0.5, "B": 0.5},
		}}
		_, err := EstimateBias(taxa, bad, MethodRSS, 0, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("got %v, want ErrInvalidInput", err)
		}
	})

	t.Run("no samples", func(t *testing.T) {
		_, err := EstimateBias(taxa, nil, MethodRSS, 0, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("got %v, want ErrInvalidInput", err)
		}
	})
}

func TestPredict_RoundTrip(t *testing.T) {
	taxa := []string{"A", "B", "C"}
	observed := map[string]float64{"A": 0.5, "B": 0.25, "C": 0.25}
	samples := []Sample{uniformSample("s1", observed)}

	est, err := EstimateBias(taxa, samples, MethodRSS, 0, 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	pred, err := Predict(est, observed)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for _, tx := range taxa {
		if math.Abs(pred[tx]-1.0/3) > tol {
			t.Errorf("predicted %s: got %v, want 1/3", tx, pred[tx])
		}
	}
}

func TestPredict_MissingTaxon(t *testing.T) {
	est := Estimate{
		Taxa: []string{"A", "B"},
		Bias: map[string]float64{"A": 0.6, "B": 0.4},
	}
	_, err := Predict(est, map[string]float64{"A": 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}
