package baseline

import "math"

// Welford maintains the exact cumulative mean and variance of everything
// it has seen, using Welford's single-pass update. Unlike EWMA it never
// forgets, which makes it the right choice for series whose true level is
// constant and only the noise matters.
type Welford struct {
	n    int
	mean float64
	m2   float64 // Sum of squared deviations from the running mean
}

// NewWelford creates an empty cumulative estimator.
func NewWelford() *Welford {
	return &Welford{}
}

// Update folds one sample into the running statistics.
func (w *Welford) Update(value float64) {
	w.n++
	delta := value - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (value - w.mean)
}

// Mean returns the exact sample mean.
func (w *Welford) Mean() float64 { return w.mean }

// StdDev returns the sample standard deviation (n-1 denominator).
func (w *Welford) StdDev() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// Samples returns the number of samples processed.
func (w *Welford) Samples() int { return w.n }
