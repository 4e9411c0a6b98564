// Package rankeval computes rank-based quality metrics for anomaly scorers.
//
// All functions follow one score convention: lower score means more
// anomalous (see Polarity). Callers holding scores with the opposite
// orientation should pass them through Normalize first rather than
// negating by hand at every call site.
//
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package rankeval

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors. Callers branch with errors.Is; the wrapped message
// carries the offending values.
var (
	// ErrInvalidArgument reports malformed caller input: mismatched
	// sequence lengths or an out-of-range rank cap.
	ErrInvalidArgument = errors.New("rankeval: invalid argument")

	// ErrUndefined reports a mathematically undefined result, such as
	// average precision over labels with no true anomalies.
	ErrUndefined = errors.New("rankeval: result undefined")
)

// Pair is one labeled observation: an anomaly score and the ground truth.
type Pair struct {
	Label bool    `json:"label"`
	Score float64 `json:"score"`
}

// Point is one rank on a precision curve. Adjusted rescales Precision so
// that random ranking maps to 0 and perfect ranking to 1; it is left at
// zero when every label is true (the adjustment is undefined there).
type Point struct {
	N         int     `json:"n"`
	Precision float64 `json:"precision"`
	Adjusted  float64 `json:"adjusted"`
}

// rankOrder returns the indices of scores sorted ascending (most anomalous
// first). The sort is stable: equal scores keep their input order, which is
// the documented tie-break rule for this package.
func rankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})
	return order
}

// PrecisionAtN returns precision@n for every n in 1..nMax: the fraction of
// true labels among the n lowest-scored observations. nMax of 0 means the
// full input length. Inputs are not mutated.
func PrecisionAtN(labels []bool, scores []float64, nMax int) ([]float64, error) {
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("%w: %d labels vs %d scores", ErrInvalidArgument, len(labels), len(scores))
	}
	if nMax < 0 {
		return nil, fmt.Errorf("%w: negative n_max %d", ErrInvalidArgument, nMax)
	}
	if nMax > len(labels) {
		return nil, fmt.Errorf("%w: n_max %d exceeds input length %d", ErrInvalidArgument, nMax, len(labels))
	}
	if nMax == 0 {
		nMax = len(labels)
	}

	order := rankOrder(scores)
	precisions := make([]float64, 0, nMax)
	hits := 0
	for n := 1; n <= nMax; n++ {
		if labels[order[n-1]] {
			hits++
		}
		precisions = append(precisions, float64(hits)/float64(n))
	}
	return precisions, nil
}

// AveragePrecision returns the mean of precision@n taken only at the ranks
// where a true anomaly sits. It fails with ErrUndefined when labels contain
// no true entries.
func AveragePrecision(labels []bool, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, fmt.Errorf("%w: %d labels vs %d scores", ErrInvalidArgument, len(labels), len(scores))
	}

	order := rankOrder(scores)
	hits := 0
	sum := 0.0
	for n := 1; n <= len(order); n++ {
		if labels[order[n-1]] {
			hits++
			sum += float64(hits) / float64(n)
		}
	}
	if hits == 0 {
		return 0, fmt.Errorf("%w: no true anomalies in labels", ErrUndefined)
	}
	return sum / float64(hits), nil
}

// AdjustedScore rescales a precision-like metric against the random-ranking
// baseline: (raw - anomalyFraction) / (1 - anomalyFraction). A random
// ranking maps to 0 and a perfect one to 1. anomalyFraction of 1 makes the
// rescaling undefined and fails with ErrUndefined.
func AdjustedScore(raw, anomalyFraction float64) (float64, error) {
	if anomalyFraction == 1 {
		return 0, fmt.Errorf("%w: anomaly fraction is 1", ErrUndefined)
	}
	return (raw - anomalyFraction) / (1 - anomalyFraction), nil
}

// Fraction returns the share of true labels. Empty input yields 0.
func Fraction(labels []bool) float64 {
	if len(labels) == 0 {
		return 0
	}
	hits := 0
	for _, l := range labels {
		if l {
			hits++
		}
	}
	return float64(hits) / float64(len(labels))
}

// Curve returns the precision curve for n in 1..nMax with the baseline
// adjustment applied per rank. When every label is true the adjustment is
// undefined; Adjusted stays zero and Precision alone is meaningful.
func Curve(labels []bool, scores []float64, nMax int) ([]Point, error) {
	precisions, err := PrecisionAtN(labels, scores, nMax)
	if err != nil {
		return nil, err
	}

	fraction := Fraction(labels)
	points := make([]Point, len(precisions))
	for i, p := range precisions {
		points[i] = Point{N: i + 1, Precision: p}
		if fraction < 1 {
			points[i].Adjusted = (p - fraction) / (1 - fraction)
		}
	}
	return points, nil
}
