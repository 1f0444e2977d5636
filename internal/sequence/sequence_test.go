package sequence

import (
	"math"
	"testing"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

func TestRunLengthAndReset(t *testing.T) {
	t.Parallel()
	w := cell.DefaultWeights()
	for n := 0; n <= 9; n++ {
		inputs := make([]int64, n)
		for i := range inputs {
			inputs[i] = int64(i*517 - 1500)
		}
		out := Run(inputs, w, fixedpoint.Q6_11)
		if out == nil {
			t.Fatalf("n=%d: Run returned nil", n)
		}
		if len(out) != n {
			t.Fatalf("n=%d: got %d states", n, len(out))
		}
		if n > 0 && out[0] != (cell.State{C: 0, H: 0}) {
			t.Fatalf("n=%d: row 0 must be the reset state, got %+v", n, out[0])
		}
	}
}

func TestRunSingleRowNeverSteps(t *testing.T) {
	t.Parallel()
	calls := 0
	out := Fold([]int64{2048}, cell.Reset, func(prev cell.State, raw int64) cell.State {
		calls++
		return prev
	})
	if calls != 0 || len(out) != 1 {
		t.Fatalf("single row: calls=%d len=%d", calls, len(out))
	}
}

func TestRunLatencyAlignment(t *testing.T) {
	t.Parallel()
	w := cell.DefaultWeights()
	inputs := []int64{0, 2048, -1024, 4096}
	out := Run(inputs, w, fixedpoint.Q6_11)

	want := []cell.State{cell.Reset}
	prev := cell.Reset
	for k := 1; k < len(inputs); k++ {
		prev = cell.Step(float64(inputs[k-1])/2048, prev, w)
		want = append(want, prev)
	}
	for k := range want {
		if out[k] != want[k] {
			t.Fatalf("row %d: got %+v want %+v", k, out[k], want[k])
		}
	}

	// Row 1 responds to x_t at row 0 (zero), not row 1.
	if out[1] != cell.Step(0, cell.Reset, w) {
		t.Fatalf("row 1 must consume input row 0")
	}
}

func TestRunTwoRowExample(t *testing.T) {
	t.Parallel()
	w := cell.DefaultWeights()
	out := Run([]int64{2048, 0}, w, fixedpoint.Q6_11)
	if len(out) != 2 || out[0] != cell.Reset {
		t.Fatalf("unexpected trace: %+v", out)
	}
	i := 1.0 / (1.0 + math.Exp(-2.27))
	c := i * math.Tanh(0.62)
	o := 1.0 / (1.0 + math.Exp(-0.40))
	h := o * math.Tanh(c)
	if math.Abs(out[1].C-c) > 1e-14 || math.Abs(out[1].H-h) > 1e-14 {
		t.Fatalf("row 1: got %+v want {%v %v}", out[1], c, h)
	}
}

// The two-row table [{x_t:0}, {x_t:2048}]: the 2048 sample arrives on the
// last row and never drives a step, so row 1 is the response to x_t=0.
func TestRunTwoRowTableUsesRowZeroInput(t *testing.T) {
	t.Parallel()
	w := cell.DefaultWeights()
	inputs := []int64{0, 2048}

	out := Run(inputs, w, fixedpoint.Q6_11)
	if len(out) != 2 || out[0] != cell.Reset {
		t.Fatalf("unexpected trace: %+v", out)
	}
	if out[1] != cell.Step(0, cell.Reset, w) {
		t.Fatalf("row 1: got %+v want Step(0, Reset)", out[1])
	}
	if out[1] == cell.Step(1, cell.Reset, w) {
		t.Fatal("row 1 must not consume the x_t=2048 sample")
	}

	g := Gates(inputs, w, fixedpoint.Q6_11)
	if len(g) != 1 {
		t.Fatalf("gates: got %d want 1", len(g))
	}
	if g[0].FPre != w.Bf || g[0].IPre != w.Bi || g[0].GPre != w.Bg || g[0].OPre != w.Bo {
		t.Fatalf("zero input leaves only the biases: %+v", g[0])
	}
}

func TestFoldInputsUntouched(t *testing.T) {
	t.Parallel()
	inputs := []int64{1, 2, 3}
	_ = Run(inputs, cell.DefaultWeights(), fixedpoint.Q6_11)
	if inputs[0] != 1 || inputs[1] != 2 || inputs[2] != 3 {
		t.Fatalf("inputs mutated: %v", inputs)
	}
}

func TestGatesAgreeWithRun(t *testing.T) {
	t.Parallel()
	w := cell.DefaultWeights()
	inputs := []int64{300, -200, 4000, 12}
	trace := Run(inputs, w, fixedpoint.Q6_11)
	gates := Gates(inputs, w, fixedpoint.Q6_11)
	if len(gates) != len(inputs)-1 {
		t.Fatalf("got %d gate records", len(gates))
	}
	for k, g := range gates {
		if g.Next != trace[k+1] {
			t.Fatalf("gates[%d].Next=%+v trace[%d]=%+v", k, g.Next, k+1, trace[k+1])
		}
	}
	if got := Gates([]int64{5}, w, fixedpoint.Q6_11); len(got) != 0 {
		t.Fatalf("single row should yield no gates, got %d", len(got))
	}
}
