package rankeval

import "fmt"

// Polarity declares the orientation of a scorer's raw output. The canonical
// orientation in this repo is PolarityLow; every function in this package
// assumes it.
type Polarity string

const (
	// PolarityLow means lower scores mark more anomalous observations.
	PolarityLow Polarity = "low"
	// PolarityHigh means higher scores mark more anomalous observations.
	PolarityHigh Polarity = "high"
)

// ParsePolarity maps a wire string to a Polarity. Empty input defaults to
// PolarityLow.
func ParsePolarity(s string) (Polarity, error) {
	switch Polarity(s) {
	case "", PolarityLow:
		return PolarityLow, nil
	case PolarityHigh:
		return PolarityHigh, nil
	default:
		return "", fmt.Errorf("%w: unknown polarity %q", ErrInvalidArgument, s)
	}
}

// Normalize returns scores in the canonical low-is-anomalous orientation,
// negating each value when polarity is PolarityHigh. The input slice is
// never mutated; the PolarityLow case returns it as-is.
func Normalize(scores []float64, polarity Polarity) []float64 {
	if polarity != PolarityHigh {
		return scores
	}
	flipped := make([]float64, len(scores))
	for i, s := range scores {
		flipped[i] = -s
	}
	return flipped
}
