// Package sequence replays a raw input trace through the reference cell.
package sequence

import (
	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

// Run returns one state per input row. Row 0 is cell.Reset; row k is the
// cell's response to the input presented at row k-1, which lines the
// reference up with the hardware's one-cycle output latency.
func Run(inputs []int64, w cell.Weights, scale fixedpoint.Scale) []cell.State {
	return Fold(inputs, cell.Reset, func(prev cell.State, raw int64) cell.State {
		return cell.Step(scale.Dequantize(raw), prev, w)
	})
}

// Fold seeds the trace with init and appends step(prev, inputs[k-1]) for
// every following row. The last input never feeds a step.
func Fold(inputs []int64, init cell.State, step func(prev cell.State, raw int64) cell.State) []cell.State {
	out := make([]cell.State, 0, len(inputs))
	if len(inputs) == 0 {
		return out
	}
	out = append(out, init)
	for _, raw := range inputs[:len(inputs)-1] {
		out = append(out, step(out[len(out)-1], raw))
	}
	return out
}

// Gates is Run, keeping every step's intermediates. Element k holds the
// gates that produced trace row k+1.
func Gates(inputs []int64, w cell.Weights, scale fixedpoint.Scale) []cell.Gates {
	out := make([]cell.Gates, 0, max(len(inputs)-1, 0))
	Fold(inputs, cell.Reset, func(prev cell.State, raw int64) cell.State {
		g := cell.StepGates(scale.Dequantize(raw), prev, w)
		out = append(out, g)
		return g.Next
	})
	return out
}
