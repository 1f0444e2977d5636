// Package fixedpoint converts between raw hardware integer samples and reals.
//
// A Scale is the divisor of a binary fixed-point format: a raw sample r
// represents the real value r/scale. The hardware trace uses Q6.11, so the
// scale is 2^11.
package fixedpoint

import (
	"errors"
	"fmt"
	"math"
)

// FracBits11 is the number of fractional bits in the Q6.11 trace format.
const FracBits11 = 11

// Q6_11 is the divisor of the Q6.11 format used by the hardware trace.
const Q6_11 Scale = 1 << FracBits11

// ErrInvalidScale rejects non-positive or non-finite scales.
var ErrInvalidScale = errors.New("fixedpoint: invalid scale")

// Scale is a fixed-point divisor.
type Scale float64

// FromFracBits returns the scale of a format with the given fractional bits.
func FromFracBits(bits int) (Scale, error) {
	if bits < 0 || bits > 52 {
		return 0, fmt.Errorf("%w: %d fractional bits", ErrInvalidScale, bits)
	}
	return Scale(math.Ldexp(1, bits)), nil
}

// Validate reports whether s can be used as a divisor.
func (s Scale) Validate() error {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidScale, f)
	}
	return nil
}

// Dequantize converts a raw sample to its real value.
func (s Scale) Dequantize(raw int64) float64 {
	return float64(raw) / float64(s)
}

// DequantizeAll converts every raw sample in src.
func (s Scale) DequantizeAll(src []int64) []float64 {
	out := make([]float64, len(src))
	for i, r := range src {
		out[i] = s.Dequantize(r)
	}
	return out
}

// Quantize converts v to the nearest raw sample, rounding half away from zero.
// Values outside the int64 range saturate.
func (s Scale) Quantize(v float64) int64 {
	r := math.Round(v * float64(s))
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}

// Step is the real value of one least-significant bit.
func (s Scale) Step() float64 {
	return 1.0 / float64(s)
}

func (s Scale) String() string {
	if bits := math.Log2(float64(s)); bits == math.Trunc(bits) && bits >= 0 {
		return fmt.Sprintf("%g (2^%d)", float64(s), int(bits))
	}
	return fmt.Sprintf("%g", float64(s))
}
