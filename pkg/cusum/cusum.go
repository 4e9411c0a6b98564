// Package cusum implements two-sided cumulative-sum change detection over
// scalar series.
//
// A detector accumulates deviations of each sample from a caller-supplied
// target mean. The high sum collects excursions above mean+shift, the low
// sum collects excursions below mean-shift, and a sample is anomalous once
// either sum crosses the decision threshold. Unlike a per-point control
// chart, the statistic responds to sustained small shifts, not just single
// extreme values.
//
// Baseline statistics (mean, and typically shift/threshold expressed in
// stddev units) are the caller's business: pass the unconditional sample
// stats, stats from a trusted anomaly-free window, or an online estimate.
//
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package cusum

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument reports malformed detector parameters: a negative
// shift or threshold.
var ErrInvalidArgument = errors.New("cusum: invalid argument")

// Direction labels which accumulator tripped the threshold.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Point references one anomalous sample by position and value.
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Step is the per-sample accumulator snapshot: the running high/low sums
// after folding the sample in, and whether the sample is flagged. The full
// step sequence is the augmented series used for charting.
type Step struct {
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Anomalous bool    `json:"anomalous"`
	Direction string  `json:"direction,omitempty"` // "up" or "down" when anomalous
}

// Result is the outcome of a full-series Detect call.
type Result struct {
	Steps     []Step  `json:"steps"`
	Anomalies []Point `json:"anomalies"`
}

// Detector is the streaming form: feed samples one at a time with Update.
// A Detector must not be shared between concurrent callers; give each
// series its own.
type Detector struct {
	Mean      float64 // Baseline center (process target)
	Shift     float64 // Tolerance band half-width (slack, typically one stddev)
	Threshold float64 // Decision limit on either cumulative sum

	high float64
	low  float64
	n    int
}

// NewDetector validates the parameters and returns a zeroed detector.
func NewDetector(mean, shift, threshold float64) (*Detector, error) {
	if shift < 0 {
		return nil, fmt.Errorf("%w: negative shift %v", ErrInvalidArgument, shift)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: negative threshold %v", ErrInvalidArgument, threshold)
	}
	return &Detector{Mean: mean, Shift: shift, Threshold: threshold}, nil
}

// Update folds one sample into the running sums and reports the resulting
// step. Sums are not reset on detection: a sustained shift keeps every
// subsequent sample flagged until the series returns toward the target.
func (d *Detector) Update(value float64) Step {
	d.high = math.Max(0, d.high+value-d.Mean-d.Shift)
	d.low = math.Min(0, d.low+value-d.Mean+d.Shift)

	step := Step{
		Index: d.n,
		Value: value,
		High:  d.high,
		Low:   d.low,
	}
	d.n++

	switch {
	case d.high > d.Threshold:
		step.Anomalous = true
		step.Direction = DirectionUp
	case d.low < -d.Threshold:
		step.Anomalous = true
		step.Direction = DirectionDown
	}
	return step
}

// Sums returns the current high and low accumulators.
func (d *Detector) Sums() (high, low float64) {
	return d.high, d.low
}

// Samples returns how many values the detector has consumed.
func (d *Detector) Samples() int {
	return d.n
}

// Reset clears the accumulators and the sample counter, keeping the
// parameters.
func (d *Detector) Reset() {
	d.high = 0
	d.low = 0
	d.n = 0
}

// Rebase swaps in new baseline parameters and resets the accumulators.
// Used when the caller's baseline estimate moves enough that the old sums
// no longer describe deviation from the current target.
func (d *Detector) Rebase(mean, shift, threshold float64) error {
	if shift < 0 {
		return fmt.Errorf("%w: negative shift %v", ErrInvalidArgument, shift)
	}
	if threshold < 0 {
		return fmt.Errorf("%w: negative threshold %v", ErrInvalidArgument, threshold)
	}
	d.Mean = mean
	d.Shift = shift
	d.Threshold = threshold
	d.Reset()
	return nil
}

// Detect runs the detector over a complete series in one pass. Values must
// be in time order. It returns one Step per sample plus the flagged points;
// an empty anomaly list is a successful result, not an error.
func Detect(values []float64, mean, shift, threshold float64) (*Result, error) {
	d, err := NewDetector(mean, shift, threshold)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Steps:     make([]Step, 0, len(values)),
		Anomalies: []Point{},
	}
	for _, v := range values {
		step := d.Update(v)
		result.Steps = append(result.Steps, step)
		if step.Anomalous {
			result.Anomalies = append(result.Anomalies, Point{Index: step.Index, Value: step.Value})
		}
	}
	return result, nil
}
