package retrieval

import "math"

// cosine computes cosine similarity in float64. Zero vectors score 0.
// Both vectors must have the same length.
func cosine(q []float64, d []float32) float64 {
	var dot, qn, dn float64
	for i, qv := range q {
		dv := float64(d[i])
		dot += qv * dv
		qn += qv * qv
		dn += dv * dv
	}
	if qn == 0 || dn == 0 {
		return 0
	}
	return dot / (math.Sqrt(qn) * math.Sqrt(dn))
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
