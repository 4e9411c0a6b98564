// Package baseline provides online estimators for per-series baseline
// statistics. Each estimator consumes one sample at a time and maintains a
// running mean and standard deviation without retaining the samples
// themselves, so a long-lived series costs constant memory.
package baseline

import "fmt"

// Algorithm names accepted by New and stored with persisted baselines.
const (
	AlgorithmEWMA       = "ewma"
	AlgorithmCumulative = "cumulative"
	AlgorithmRolling    = "rolling"
)

// Estimator is the common contract for online baseline estimators. An
// Estimator is not safe for concurrent use; give each series its own.
type Estimator interface {
	// Update folds one sample into the estimate.
	Update(value float64)

	// Mean returns the current center estimate.
	Mean() float64

	// StdDev returns the current spread estimate. Zero until enough
	// samples have been seen to estimate spread (at least two).
	StdDev() float64

	// Samples returns how many values have been folded in.
	Samples() int
}

// New constructs an estimator by algorithm name. alpha applies to the EWMA
// algorithm, window to the rolling algorithm; each ignores the other's
// parameter.
func New(algorithm string, alpha float64, window int) (Estimator, error) {
	switch algorithm {
	case AlgorithmEWMA:
		return NewEWMA(alpha), nil
	case AlgorithmCumulative:
		return NewWelford(), nil
	case AlgorithmRolling:
		return NewRolling(window), nil
	default:
		return nil, fmt.Errorf("unknown baseline algorithm %q", algorithm)
	}
}
