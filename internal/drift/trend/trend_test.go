package trend

import (
	"math"
	"testing"
	"time"
)

func TestFit_PerfectLine(t *testing.T) {
	t.Parallel()

	// y = 2x + 1
	hours := []float64{0, 1, 2, 3, 4}
	values := []float64{1, 3, 5, 7, 9}
	limit := 15.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	if math.Abs(est.Slope-2.0) > 0.0001 {
		t.Errorf("Slope = %v, want 2.0", est.Slope)
	}

	if math.Abs(est.Intercept-1.0) > 0.0001 {
		t.Errorf("Intercept = %v, want 1.0", est.Intercept)
	}

	// R2 should be 1.0 for a perfect linear fit
	if math.Abs(est.R2-1.0) > 0.0001 {
		t.Errorf("R2 = %v, want 1.0", est.R2)
	}

	// Fitted value at t=4 should be 9
	if math.Abs(est.Predicted-9.0) > 0.0001 {
		t.Errorf("Predicted = %v, want 9.0", est.Predicted)
	}

	// Time to limit: (15 - 9) / 2 = 3 hours
	if est.TimeToLimit == nil {
		t.Fatal("expected TimeToLimit, got nil")
	}
	expected := 3 * time.Hour
	if math.Abs(est.TimeToLimit.Hours()-expected.Hours()) > 0.01 {
		t.Errorf("TimeToLimit = %v, want %v", est.TimeToLimit, expected)
	}
}

func TestFit_FlatLine(t *testing.T) {
	t.Parallel()

	hours := []float64{0, 1, 2, 3, 4}
	values := []float64{5, 5, 5, 5, 5}
	limit := 10.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	if math.Abs(est.Slope) > 0.0001 {
		t.Errorf("Slope = %v, want 0", est.Slope)
	}

	if math.Abs(est.Intercept-5.0) > 0.0001 {
		t.Errorf("Intercept = %v, want 5.0", est.Intercept)
	}

	if math.Abs(est.Predicted-5.0) > 0.0001 {
		t.Errorf("Predicted = %v, want 5.0", est.Predicted)
	}

	if est.TimeToLimit != nil {
		t.Errorf("TimeToLimit should be nil for flat line, got %v", est.TimeToLimit)
	}
}

func TestFit_NoisyData(t *testing.T) {
	t.Parallel()

	// Underlying trend: y = 1.5x + 2, with noise
	hours := []float64{0, 1, 2, 3, 4, 5, 6}
	values := []float64{2.1, 3.4, 5.2, 6.8, 8.1, 9.6, 11.0}
	limit := 20.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	if math.Abs(est.Slope-1.5) > 0.2 {
		t.Errorf("Slope = %v, want approximately 1.5", est.Slope)
	}

	if math.Abs(est.Intercept-2.0) > 0.5 {
		t.Errorf("Intercept = %v, want approximately 2.0", est.Intercept)
	}

	if est.R2 < 0.95 || est.R2 > 1.0 {
		t.Errorf("R2 = %v, want between 0.95 and 1.0", est.R2)
	}

	if est.TimeToLimit == nil {
		t.Error("expected TimeToLimit for rising trend, got nil")
	}
}

func TestFit_TimeToLimit(t *testing.T) {
	t.Parallel()

	// Rising data: y = 3x + 10
	hours := []float64{0, 1, 2, 3}
	values := []float64{10, 13, 16, 19}
	limit := 25.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	// At t=3, predicted=19. To reach 25: (25-19)/3 = 2 hours
	if est.TimeToLimit == nil {
		t.Fatal("expected TimeToLimit, got nil")
	}
	expectedHours := 2.0
	if math.Abs(est.TimeToLimit.Hours()-expectedHours) > 0.1 {
		t.Errorf("TimeToLimit = %v hours, want approximately %v hours",
			est.TimeToLimit.Hours(), expectedHours)
	}
}

func TestFit_DecreasingToLimit(t *testing.T) {
	t.Parallel()

	// Decreasing data: y = -2x + 20
	hours := []float64{0, 1, 2, 3}
	values := []float64{20, 18, 16, 14}
	limit := 10.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	// At t=3, predicted=14. To reach 10: (10-14)/(-2) = 2 hours
	if est.TimeToLimit == nil {
		t.Fatal("expected TimeToLimit for decreasing trend, got nil")
	}
	expectedHours := 2.0
	if math.Abs(est.TimeToLimit.Hours()-expectedHours) > 0.1 {
		t.Errorf("TimeToLimit = %v hours, want approximately %v hours",
			est.TimeToLimit.Hours(), expectedHours)
	}
}

func TestFit_NoTimeToLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hours  []float64
		values []float64
		limit  float64
		reason string
	}{
		{
			name:   "flat line",
			hours:  []float64{0, 1, 2, 3},
			values: []float64{5, 5, 5, 5},
			limit:  10.0,
			reason: "slope is zero",
		},
		{
			name:   "rising but already above limit",
			hours:  []float64{0, 1, 2, 3},
			values: []float64{10, 12, 14, 16},
			limit:  15.0,
			reason: "already at or above limit",
		},
		{
			name:   "decreasing away from limit",
			hours:  []float64{0, 1, 2, 3},
			values: []float64{20, 18, 16, 14},
			limit:  25.0,
			reason: "decreasing but limit is above",
		},
		{
			name:   "rising away from lower limit",
			hours:  []float64{0, 1, 2, 3},
			values: []float64{2, 4, 6, 8},
			limit:  5.0,
			reason: "rising but limit is below",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Fit(tt.hours, tt.values, tt.limit)
			if est == nil {
				t.Fatal("expected estimate, got nil")
			}
			if est.TimeToLimit != nil {
				t.Errorf("expected no TimeToLimit (%s), got %v", tt.reason, est.TimeToLimit)
			}
		})
	}
}

func TestFit_TooFewPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hours  []float64
		values []float64
	}{
		{
			name:   "empty",
			hours:  []float64{},
			values: []float64{},
		},
		{
			name:   "one point",
			hours:  []float64{0},
			values: []float64{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Fit(tt.hours, tt.values, 10.0)
			if est != nil {
				t.Errorf("expected nil for %s, got %+v", tt.name, est)
			}
		})
	}
}

func TestFit_MismatchedLengths(t *testing.T) {
	t.Parallel()

	hours := []float64{0, 1, 2}
	values := []float64{1, 3}

	est := Fit(hours, values, 10.0)
	if est != nil {
		t.Errorf("expected nil for mismatched lengths, got %+v", est)
	}
}

func TestFit_ZeroVarianceX(t *testing.T) {
	t.Parallel()

	// All sample times identical (no variance in X)
	hours := []float64{5, 5, 5, 5}
	values := []float64{10, 12, 11, 13}
	limit := 20.0

	est := Fit(hours, values, limit)

	if est == nil {
		t.Fatal("expected estimate, got nil")
	}

	if est.Slope != 0 {
		t.Errorf("Slope = %v, want 0 for zero variance in X", est.Slope)
	}

	meanY := (10 + 12 + 11 + 13) / 4.0
	if math.Abs(est.Intercept-meanY) > 0.0001 {
		t.Errorf("Intercept = %v, want %v (mean of Y)", est.Intercept, meanY)
	}

	if est.Predicted != est.Intercept {
		t.Errorf("Predicted = %v, want %v (equal to intercept)", est.Predicted, est.Intercept)
	}
}

func TestHoursFromStart(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	timestamps := []time.Time{
		base,
		base.Add(1 * time.Hour),
		base.Add(2 * time.Hour),
		base.Add(3*time.Hour + 30*time.Minute),
	}

	hours := HoursFromStart(timestamps)

	expected := []float64{0, 1, 2, 3.5}
	if len(hours) != len(expected) {
		t.Fatalf("length = %d, want %d", len(hours), len(expected))
	}

	for i := range expected {
		if math.Abs(hours[i]-expected[i]) > 0.0001 {
			t.Errorf("hours[%d] = %v, want %v", i, hours[i], expected[i])
		}
	}
}

func TestHoursFromStart_Empty(t *testing.T) {
	t.Parallel()

	if got := HoursFromStart([]time.Time{}); got != nil {
		t.Errorf("expected nil for empty timestamps, got %v", got)
	}
}
