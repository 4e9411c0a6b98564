package baseline

import "math"

// EWMA tracks an exponentially weighted moving average with an
// EWMA-weighted variance estimate. Recent samples dominate, so the
// baseline follows gradual level changes instead of anchoring on history.
type EWMA struct {
	alpha   float64
	mean    float64
	varEst  float64
	samples int
}

// NewEWMA creates an EWMA estimator with the given smoothing factor.
// Out-of-range alpha falls back to 0.1.
func NewEWMA(alpha float64) *EWMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.1
	}
	return &EWMA{alpha: alpha}
}

// Update folds one sample into the mean and variance estimates.
func (e *EWMA) Update(value float64) {
	e.samples++
	if e.samples == 1 {
		e.mean = value
		e.varEst = 0
		return
	}
	diff := value - e.mean
	e.mean += e.alpha * diff
	e.varEst = (1 - e.alpha) * (e.varEst + e.alpha*diff*diff)
}

// Mean returns the current smoothed mean.
func (e *EWMA) Mean() float64 { return e.mean }

// StdDev returns the current standard deviation estimate.
func (e *EWMA) StdDev() float64 {
	if e.samples < 2 {
		return 0
	}
	return math.Sqrt(e.varEst)
}

// Samples returns the number of samples processed.
func (e *EWMA) Samples() int { return e.samples }

// Alpha returns the smoothing factor.
func (e *EWMA) Alpha() float64 { return e.alpha }
