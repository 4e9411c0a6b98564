package baseline

import "math"

// Rolling keeps a fixed-size window of recent samples in a ring buffer and
// reports the window's mean and standard deviation. Everything older than
// the window is forgotten completely, so the baseline adapts within one
// window length after a level change.
type Rolling struct {
	capacity int
	values   []float64
	idx      int
	count    int
	total    int
	sum      float64
	sumSq    float64
}

// NewRolling creates a rolling-window estimator over the last window
// samples. Window sizes below 2 fall back to 60.
func NewRolling(window int) *Rolling {
	if window < 2 {
		window = 60
	}
	return &Rolling{
		capacity: window,
		values:   make([]float64, window),
	}
}

// Update pushes one sample into the window, evicting the oldest once the
// window is full.
func (r *Rolling) Update(value float64) {
	r.total++
	if r.count < r.capacity {
		r.values[r.idx] = value
		r.sum += value
		r.sumSq += value * value
		r.idx = (r.idx + 1) % r.capacity
		r.count++
		return
	}

	old := r.values[r.idx]
	r.sum -= old
	r.sumSq -= old * old

	r.values[r.idx] = value
	r.sum += value
	r.sumSq += value * value
	r.idx = (r.idx + 1) % r.capacity
}

// Mean returns the mean of the current window.
func (r *Rolling) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

// StdDev returns the standard deviation of the current window.
func (r *Rolling) StdDev() float64 {
	if r.count < 2 {
		return 0
	}
	mean := r.Mean()
	variance := r.sumSq/float64(r.count) - mean*mean
	if variance < 0 {
		// Guard against floating-point cancellation on near-constant data.
		variance = 0
	}
	return math.Sqrt(variance)
}

// Samples returns the total number of samples ever pushed, not the
// current window occupancy (see Window for that).
func (r *Rolling) Samples() int { return r.total }

// Window returns how many samples currently sit in the window.
func (r *Rolling) Window() int { return r.count }
