package activation

import (
	"math"
	"testing"
)

var probes = []float64{
	0, 1e-9, 0.25, 0.5, 1, 2, 3.25, 5, 10, 20, 30,
	-1e-9, -0.25, -0.5, -1, -2, -3.25, -5, -10, -20, -30,
}

func TestSigmoidZero(t *testing.T) {
	t.Parallel()
	if got := Sigmoid(0); got != 0.5 {
		t.Fatalf("Sigmoid(0): got %v want 0.5", got)
	}
}

func TestSigmoidRangeAndSymmetry(t *testing.T) {
	t.Parallel()
	for _, x := range probes {
		s := Sigmoid(x)
		if !(s > 0 && s < 1) {
			t.Errorf("Sigmoid(%v)=%v outside (0,1)", x, s)
		}
		if d := math.Abs(Sigmoid(-x) - (1 - s)); d > 1e-12 {
			t.Errorf("Sigmoid(-%v) != 1-Sigmoid(%v): diff=%g", x, x, d)
		}
	}
}

func TestSigmoidMatchesNaive(t *testing.T) {
	t.Parallel()
	for _, x := range probes {
		want := 1.0 / (1.0 + math.Exp(-x))
		if d := math.Abs(Sigmoid(x) - want); d > 1e-15 {
			t.Errorf("Sigmoid(%v): got %v want %v", x, Sigmoid(x), want)
		}
	}
}

func TestSigmoidExtremeInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    float64
		want float64
	}{
		{1000, 1},
		{-1000, 0},
		{math.MaxFloat64, 1},
		{-math.MaxFloat64, 0},
	}
	for _, tc := range tests {
		got := Sigmoid(tc.x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Sigmoid(%v) not finite: %v", tc.x, got)
		}
		if got != tc.want {
			t.Errorf("Sigmoid(%v): got %v want %v", tc.x, got, tc.want)
		}
	}
}

func TestTanh(t *testing.T) {
	t.Parallel()
	if got := Tanh(0); got != 0 {
		t.Fatalf("Tanh(0): got %v want 0", got)
	}
	for _, x := range probes {
		v := Tanh(x)
		if math.Abs(x) < 15 && !(v > -1 && v < 1) {
			t.Errorf("Tanh(%v)=%v outside (-1,1)", x, v)
		}
		if Tanh(-x) != -v {
			t.Errorf("Tanh(-%v)=%v, want %v", x, Tanh(-x), -v)
		}
	}
}
