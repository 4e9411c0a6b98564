package scorer

import (
	"math"
	"sort"
)

// centerZScores scores each value by its negated absolute z-score against
// the sample mean and standard deviation. Values far from the center on
// either side score low. A flat sample scores all zeros.
func centerZScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	if len(values) < 2 {
		return scores
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	if ss == 0 {
		return scores
	}
	sd := math.Sqrt(ss / float64(len(values)-1))

	for i, v := range values {
		scores[i] = -math.Abs(v-mean) / sd
	}
	return scores
}

// iqrScores scores each value by its negated distance outside the Tukey
// fences (quartiles +/- 1.5 IQR). Values inside the fences score zero.
// When the IQR collapses to zero the fences are useless, so it falls back
// to the negated distance from the median.
func iqrScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	if len(values) < 2 {
		return scores
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	if iqr == 0 {
		median := quantile(sorted, 0.5)
		for i, v := range values {
			scores[i] = -math.Abs(v - median)
		}
		return scores
	}

	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	for i, v := range values {
		switch {
		case v < lower:
			scores[i] = -(lower - v)
		case v > upper:
			scores[i] = -(v - upper)
		}
	}
	return scores
}

// quantile returns the p-quantile of a sorted sample, interpolating
// linearly between adjacent order statistics.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
