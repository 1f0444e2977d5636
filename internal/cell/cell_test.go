package cell

import (
	"errors"
	"math"
	"testing"
)

func sigmoidRef(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func TestZeroWeights(t *testing.T) {
	t.Parallel()
	for _, x := range []float64{0, 1, -1, 31.99, -32} {
		got := Step(x, Reset, Weights{})
		if got.C != 0 || got.H != 0 {
			t.Fatalf("Step(%v) with zero weights: got %+v want zero state", x, got)
		}
	}
}

func TestStepReferenceTarget(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	g := StepGates(1.0, Reset, w)

	pre := []struct {
		name string
		got  float64
		want float64
	}{
		{"f_pre", g.FPre, 3.25},
		{"i_pre", g.IPre, 2.27},
		{"g_pre", g.GPre, 0.62},
		{"o_pre", g.OPre, 0.40},
	}
	for _, p := range pre {
		if math.Abs(p.got-p.want) > 1e-12 {
			t.Errorf("%s: got %.17g want %.17g", p.name, p.got, p.want)
		}
	}

	i := sigmoidRef(2.27)
	gg := math.Tanh(0.62)
	o := sigmoidRef(0.40)
	wantC := i * gg
	wantH := o * math.Tanh(wantC)
	if math.Abs(g.Next.C-wantC) > 1e-14 {
		t.Fatalf("c_1: got %.17g want %.17g", g.Next.C, wantC)
	}
	if math.Abs(g.Next.H-wantH) > 1e-14 {
		t.Fatalf("h_1: got %.17g want %.17g", g.Next.H, wantH)
	}
	if s := Step(1.0, Reset, w); s != g.Next {
		t.Fatalf("Step and StepGates disagree: %+v vs %+v", s, g.Next)
	}
}

func TestStepUsesPreviousState(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	prev := State{C: 0.3, H: -0.2}
	g := StepGates(0.5, prev, w)

	f := sigmoidRef(w.Wfx*0.5 + w.Wfh*prev.H + w.Bf)
	i := sigmoidRef(w.Wix*0.5 + w.Wih*prev.H + w.Bi)
	gg := math.Tanh(w.Wgx*0.5 + w.Wgh*prev.H + w.Bg)
	o := sigmoidRef(w.Wox*0.5 + w.Woh*prev.H + w.Bo)
	c := f*prev.C + i*gg
	h := o * math.Tanh(c)

	if math.Abs(g.F-f) > 1e-15 || math.Abs(g.I-i) > 1e-15 || math.Abs(g.G-gg) > 1e-15 || math.Abs(g.O-o) > 1e-15 {
		t.Fatalf("gate mismatch: got %+v", g)
	}
	if math.Abs(g.Next.C-c) > 1e-15 || math.Abs(g.Next.H-h) > 1e-15 {
		t.Fatalf("state mismatch: got %+v want {%v %v}", g.Next, c, h)
	}
}

func TestStepDeterministic(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	a := Step(0.75, State{C: 1, H: 0.5}, w)
	b := Step(0.75, State{C: 1, H: 0.5}, w)
	if a != b {
		t.Fatalf("non-deterministic step: %+v vs %+v", a, b)
	}
}

func TestWeightsAccessors(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()

	v, err := w.Get("bg")
	if err != nil || v != -0.32 {
		t.Fatalf("Get(bg): got %v, %v", v, err)
	}
	w2, err := w.With("Woh", 1.5)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if w2.Woh != 1.5 || w.Woh != 4.38 {
		t.Fatalf("With must not mutate the receiver: w=%v w2=%v", w.Woh, w2.Woh)
	}
	if _, err := w.Get("Wxx"); !errors.Is(err, ErrUnknownWeight) {
		t.Fatalf("Get(Wxx): expected ErrUnknownWeight, got %v", err)
	}
	if _, err := w.With("BF", 1); !errors.Is(err, ErrUnknownWeight) {
		t.Fatalf("With(BF): names are case-sensitive, got %v", err)
	}

	m := w.Map()
	if len(m) != len(WeightNames) {
		t.Fatalf("Map: got %d entries", len(m))
	}
	for _, name := range WeightNames {
		got, _ := w.Get(name)
		if m[name] != got {
			t.Errorf("Map[%s]: got %v want %v", name, m[name], got)
		}
	}

	o, err := Weights{}.Override(m)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if o != w {
		t.Fatalf("Override(Map()) should reproduce weights: %+v", o)
	}
}

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		name    string
		value   float64
		wantErr bool
	}{
		{"Wfx=1.5", "Wfx", 1.5, false},
		{" bo = -0.25 ", "bo", -0.25, false},
		{"Wfx", "", 0, true},
		{"=1", "", 0, true},
		{"Wzz=1", "", 0, true},
		{"Wfx=abc", "", 0, true},
	}
	for _, tc := range tests {
		name, v, err := ParseAssignment(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAssignment(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || name != tc.name || v != tc.value {
			t.Errorf("ParseAssignment(%q): got %q %v %v", tc.in, name, v, err)
		}
	}
}
