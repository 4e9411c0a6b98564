package trend

import "time"

// Estimate contains the output of a least-squares trend fit.
type Estimate struct {
	Slope       float64        // Rate of change per hour
	Intercept   float64        // Value at t=0
	R2          float64        // Coefficient of determination (0-1)
	Predicted   float64        // Fitted value at the last time point
	TimeToLimit *time.Duration // Time until limit is reached (nil if not approaching)
}

// Fit performs least-squares linear regression on series data.
// hours are sample times in hours relative to some epoch, values the
// observed values, limit the capacity bound to forecast against.
// Returns nil when fewer than 2 points are provided.
func Fit(hours, values []float64, limit float64) *Estimate {
	n := len(hours)
	if n < 2 || len(values) != n {
		return nil
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += hours[i]
		sumY += values[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXY, ssXX, ssYY float64
	for i := 0; i < n; i++ {
		dx := hours[i] - meanX
		dy := values[i] - meanY
		ssXY += dx * dy
		ssXX += dx * dx
		ssYY += dy * dy
	}

	if ssXX == 0 {
		return &Estimate{
			Slope:     0,
			Intercept: meanY,
			Predicted: meanY,
		}
	}

	slope := ssXY / ssXX
	intercept := meanY - slope*meanX

	var r2 float64
	if ssYY > 0 {
		r2 = (ssXY * ssXY) / (ssXX * ssYY)
	}

	predicted := slope*hours[n-1] + intercept

	est := &Estimate{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		Predicted: predicted,
	}

	// Time to limit: solve slope*t + intercept = limit. Only meaningful
	// when the fitted line is actually heading toward the limit.
	if slope > 0 && predicted < limit {
		hoursToLimit := (limit - predicted) / slope
		d := time.Duration(hoursToLimit * float64(time.Hour))
		est.TimeToLimit = &d
	} else if slope < 0 && predicted > limit {
		hoursToLimit := (limit - predicted) / slope
		d := time.Duration(hoursToLimit * float64(time.Hour))
		est.TimeToLimit = &d
	}

	return est
}

// HoursFromStart converts timestamps to hours relative to the first one.
func HoursFromStart(timestamps []time.Time) []float64 {
	if len(timestamps) == 0 {
		return nil
	}
	hours := make([]float64, len(timestamps))
	base := timestamps[0]
	for i, t := range timestamps {
		hours[i] = t.Sub(base).Hours()
	}
	return hours
}
