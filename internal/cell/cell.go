// Package cell implements the single-unit LSTM transition that the hardware
// datapath approximates.
package cell

import "github.com/samcharles93/lstmtrace/internal/activation"

// State is the (cell, hidden) pair carried between steps.
type State struct {
	C float64 `json:"c"`
	H float64 `json:"h"`
}

// Reset is the state at sequence index 0.
var Reset = State{}

// Gates exposes every intermediate value of a single step.
type Gates struct {
	FPre float64 `json:"f_pre"`
	IPre float64 `json:"i_pre"`
	GPre float64 `json:"g_pre"`
	OPre float64 `json:"o_pre"`

	F float64 `json:"f"`
	I float64 `json:"i"`
	G float64 `json:"g"`
	O float64 `json:"o"`

	Next State `json:"next"`
}

// Step advances the cell by one input sample.
func Step(x float64, prev State, w Weights) State {
	return StepGates(x, prev, w).Next
}

// StepGates is Step, keeping the gate pre-activations and activations.
func StepGates(x float64, prev State, w Weights) Gates {
	var g Gates
	g.FPre = w.Wfx*x + w.Wfh*prev.H + w.Bf
	g.IPre = w.Wix*x + w.Wih*prev.H + w.Bi
	g.GPre = w.Wgx*x + w.Wgh*prev.H + w.Bg
	g.OPre = w.Wox*x + w.Woh*prev.H + w.Bo

	g.F = activation.Sigmoid(g.FPre)
	g.I = activation.Sigmoid(g.IPre)
	g.G = activation.Tanh(g.GPre)
	g.O = activation.Sigmoid(g.OPre)

	c := g.F*prev.C + g.I*g.G
	g.Next = State{
		C: c,
		H: g.O * activation.Tanh(c),
	}
	return g
}
