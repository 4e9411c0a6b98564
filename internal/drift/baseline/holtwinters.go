package baseline

import "math"

// HoltWinters implements triple exponential smoothing with additive
// seasonality, plus an online estimate of the residual spread so callers
// can turn the point forecast into an expected range.
type HoltWinters struct {
	Alpha     float64   // Level smoothing (0-1)
	Beta      float64   // Trend smoothing (0-1)
	Gamma     float64   // Seasonal smoothing (0-1)
	SeasonLen int       // Number of points in one season
	Level     float64   // Current level
	Trend     float64   // Current trend
	Seasonal  []float64 // Seasonal components
	Samples   int       // Total samples processed

	residuals   Welford // Online spread of (value - fitted)
	initialized bool
}

// NewHoltWinters creates a Holt-Winters tracker. seasonLen is the number
// of data points per season (e.g. 24 for hourly data with daily
// seasonality); values below 2 fall back to 24.
func NewHoltWinters(alpha, beta, gamma float64, seasonLen int) *HoltWinters {
	if seasonLen < 2 {
		seasonLen = 24
	}
	return &HoltWinters{
		Alpha:     clamp(alpha, 0, 1),
		Beta:      clamp(beta, 0, 1),
		Gamma:     clamp(gamma, 0, 1),
		SeasonLen: seasonLen,
		Seasonal:  make([]float64, seasonLen),
	}
}

// Update processes a new value and updates level, trend, and seasonal
// components. The first full season only accumulates initial state.
func (hw *HoltWinters) Update(value float64) {
	hw.Samples++
	idx := (hw.Samples - 1) % hw.SeasonLen

	if !hw.initialized {
		hw.Seasonal[idx] = value
		if hw.Samples == hw.SeasonLen {
			hw.initialize()
		}
		return
	}

	// Track residual spread against the pre-update fit.
	hw.residuals.Update(value - (hw.Level + hw.Seasonal[idx]))

	prevLevel := hw.Level
	hw.Level = hw.Alpha*(value-hw.Seasonal[idx]) + (1-hw.Alpha)*(prevLevel+hw.Trend)
	hw.Trend = hw.Beta*(hw.Level-prevLevel) + (1-hw.Beta)*hw.Trend
	hw.Seasonal[idx] = hw.Gamma*(value-hw.Level) + (1-hw.Gamma)*hw.Seasonal[idx]
}

// initialize sets initial level, trend, and seasonal components from the
// first season.
func (hw *HoltWinters) initialize() {
	hw.initialized = true
	sum := 0.0
	for _, v := range hw.Seasonal {
		sum += v
	}
	hw.Level = sum / float64(hw.SeasonLen)
	hw.Trend = 0
	for i := range hw.Seasonal {
		hw.Seasonal[i] -= hw.Level
	}
}

// Predict returns the forecasted value for stepsAhead into the future.
func (hw *HoltWinters) Predict(stepsAhead int) float64 {
	if !hw.initialized {
		return 0
	}
	idx := (hw.Samples + stepsAhead - 1) % hw.SeasonLen
	return hw.Level + float64(stepsAhead)*hw.Trend + hw.Seasonal[idx]
}

// Fitted returns the expected value for the most recent data point.
func (hw *HoltWinters) Fitted() float64 {
	if !hw.initialized {
		return 0
	}
	idx := (hw.Samples - 1) % hw.SeasonLen
	return hw.Level + hw.Seasonal[idx]
}

// ResidualStdDev returns the standard deviation of one-step-ahead fit
// errors. Zero until at least two post-initialization samples.
func (hw *HoltWinters) ResidualStdDev() float64 {
	return hw.residuals.StdDev()
}

// ExpectedRange returns the interval the next value should fall in, as
// fitted value +/- z * residual stddev, where z widens with the requested
// confidence (0.95 maps to ~1.96). Both bounds equal the fitted value
// until enough residuals have accumulated to estimate spread.
func (hw *HoltWinters) ExpectedRange(confidence float64) (lower, upper float64) {
	fitted := hw.Fitted()
	sd := hw.ResidualStdDev()
	if !hw.initialized || sd == 0 {
		return fitted, fitted
	}
	z := zScoreFor(confidence)
	return fitted - z*sd, fitted + z*sd
}

// zScoreFor maps a two-sided confidence level to its normal quantile.
// Common levels are tabulated; anything else falls back to 3 sigma.
func zScoreFor(confidence float64) float64 {
	switch {
	case confidence >= 0.999:
		return 3.29
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	case confidence >= 0.80:
		return 1.282
	default:
		return 3.0
	}
}

// IsInitialized reports whether a full season has been absorbed and the
// model is producing forecasts.
func (hw *HoltWinters) IsInitialized() bool {
	return hw.initialized
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
