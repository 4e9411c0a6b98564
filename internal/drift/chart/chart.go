package chart

import "math"

// Severity levels for control chart breaches.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Signal is the outcome of placing one observation on a control chart.
type Signal struct {
	Breach   bool
	Sigma    float64 // Signed distance from center in spread units
	Severity string
}

// Check places value on a control chart centered at center with the given
// spread (standard deviation) and flags it when it lands at least limit
// spread units away (e.g., 3.0 for a classic three-sigma chart).
// Severity mapping:
//   - warning: |sigma| >= limit and |sigma| < limit+1
//   - critical: |sigma| >= limit+1
func Check(value, center, spread, limit float64) Signal {
	if spread <= 0 {
		return Signal{}
	}
	sigma := (value - center) / spread
	absSigma := math.Abs(sigma)

	if absSigma < limit {
		return Signal{Sigma: sigma}
	}

	severity := SeverityWarning
	if absSigma >= limit+1 {
		severity = SeverityCritical
	}

	return Signal{
		Breach:   true,
		Sigma:    sigma,
		Severity: severity,
	}
}
