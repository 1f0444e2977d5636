package compare

import "math"

// Agreement summarises how closely two equally indexed series match.
type Agreement struct {
	N       int     `json:"n"`
	MaxAbs  float64 `json:"max_abs"`
	MeanAbs float64 `json:"mean_abs"`
	RMSE    float64 `json:"rmse"`
	Cosine  float64 `json:"cosine"`
	// FirstDiff is the first index where the series differ, or -1.
	FirstDiff int `json:"first_diff"`
}

// Agree compares a and b over their common prefix. Cosine is 0 when either
// series is all zeros.
func Agree(a, b []float64) Agreement {
	n := min(len(a), len(b))
	ag := Agreement{N: n, FirstDiff: -1}
	if n == 0 {
		return ag
	}
	var sumAbs, sumSq, dot, normA, normB float64
	for i := 0; i < n; i++ {
		d := abs(a[i] - b[i])
		if d != 0 && ag.FirstDiff < 0 {
			ag.FirstDiff = i
		}
		sumAbs += d
		sumSq += d * d
		if d > ag.MaxAbs {
			ag.MaxAbs = d
		}
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	ag.MeanAbs = sumAbs / float64(n)
	ag.RMSE = math.Sqrt(sumSq / float64(n))
	if normA > 0 && normB > 0 {
		ag.Cosine = dot / (math.Sqrt(normA) * math.Sqrt(normB))
	}
	return ag
}

// Agreement compares the dequantized hardware columns with the reference.
func (r Result) Agreement() (c, h Agreement) {
	hwC := make([]float64, len(r.Rows))
	hwH := make([]float64, len(r.Rows))
	refC := make([]float64, len(r.Rows))
	refH := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		hwC[i], hwH[i] = row.HWC, row.HWH
		refC[i], refH[i] = row.FloatC, row.FloatH
	}
	return Agree(hwC, refC), Agree(hwH, refH)
}
