package cell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownWeight is returned for a weight name outside WeightNames.
var ErrUnknownWeight = errors.New("cell: unknown weight")

// Weights holds the input weight, recurrent weight and bias of each gate.
type Weights struct {
	Wfx, Wfh, Bf float64
	Wix, Wih, Bi float64
	Wgx, Wgh, Bg float64
	Wox, Woh, Bo float64
}

// DefaultWeights returns the constants programmed into the reference
// hardware target.
func DefaultWeights() Weights {
	return Weights{
		Wfx: 1.63, Wfh: 2.70, Bf: 1.62,
		Wix: 1.65, Wih: 2.00, Bi: 0.62,
		Wgx: 0.94, Wgh: 1.41, Bg: -0.32,
		Wox: -0.19, Woh: 4.38, Bo: 0.59,
	}
}

// WeightNames lists the configuration names in gate order.
var WeightNames = []string{
	"Wfx", "Wfh", "bf",
	"Wix", "Wih", "bi",
	"Wgx", "Wgh", "bg",
	"Wox", "Woh", "bo",
}

func (w *Weights) field(name string) *float64 {
	switch name {
	case "Wfx":
		return &w.Wfx
	case "Wfh":
		return &w.Wfh
	case "bf":
		return &w.Bf
	case "Wix":
		return &w.Wix
	case "Wih":
		return &w.Wih
	case "bi":
		return &w.Bi
	case "Wgx":
		return &w.Wgx
	case "Wgh":
		return &w.Wgh
	case "bg":
		return &w.Bg
	case "Wox":
		return &w.Wox
	case "Woh":
		return &w.Woh
	case "bo":
		return &w.Bo
	}
	return nil
}

// Get returns the named weight.
func (w Weights) Get(name string) (float64, error) {
	p := w.field(name)
	if p == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeight, name)
	}
	return *p, nil
}

// With returns a copy of w with the named weight replaced.
func (w Weights) With(name string, v float64) (Weights, error) {
	p := w.field(name)
	if p == nil {
		return w, fmt.Errorf("%w: %q", ErrUnknownWeight, name)
	}
	*p = v
	return w, nil
}

// Override applies every entry of m on top of w.
func (w Weights) Override(m map[string]float64) (Weights, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var err error
	for _, name := range names {
		if w, err = w.With(name, m[name]); err != nil {
			return w, err
		}
	}
	return w, nil
}

// ParseAssignment parses a NAME=VALUE weight override.
func ParseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("weight override %q: expected NAME=VALUE", s)
	}
	var probe Weights
	if probe.field(name) == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownWeight, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("weight override %q: %w", s, err)
	}
	return name, v, nil
}

// Map returns the weights keyed by configuration name.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, len(WeightNames))
	for _, name := range WeightNames {
		out[name] = *w.field(name)
	}
	return out
}
