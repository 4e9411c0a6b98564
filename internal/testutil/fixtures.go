// Package testutil provides shared test fixtures for driftscope packages.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/models"
)

// NewSeries returns a Series with sensible defaults, suitable for test
// fixtures. Override individual fields through options as needed.
func NewSeries(opts ...func(*models.Series)) models.Series {
	now := time.Now().UTC()
	s := models.Series{
		ID:         "probe.gateway.rtt_ms",
		Name:       "gateway round-trip",
		Unit:       "ms",
		Source:     models.SourceProbe,
		Status:     models.SeriesStatusActive,
		PointCount: 100,
		FirstSeen:  now.Add(-time.Hour),
		LastSeen:   now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithSeriesID sets the series ID.
func WithSeriesID(id string) func(*models.Series) {
	return func(s *models.Series) { s.ID = id }
}

// WithSource sets the sample source.
func WithSource(src models.SourceKind) func(*models.Series) {
	return func(s *models.Series) { s.Source = src }
}

// WithStatus sets the learning state.
func WithStatus(st models.SeriesStatus) func(*models.Series) {
	return func(s *models.Series) { s.Status = st }
}

// WithLastSeen sets the series' last_seen timestamp.
func WithLastSeen(t time.Time) func(*models.Series) {
	return func(s *models.Series) { s.LastSeen = t }
}

// NewPoint returns a SeriesPoint on the given series.
func NewPoint(seriesID string, value float64, opts ...func(*models.SeriesPoint)) models.SeriesPoint {
	p := models.SeriesPoint{
		SeriesID:  seriesID,
		Timestamp: time.Now().UTC(),
		Value:     value,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithTimestamp sets the point's timestamp.
func WithTimestamp(t time.Time) func(*models.SeriesPoint) {
	return func(p *models.SeriesPoint) { p.Timestamp = t }
}

// Points returns evenly spaced SeriesPoints over the given values, ending
// one interval before end.
func Points(seriesID string, end time.Time, spacing time.Duration, values ...float64) []models.SeriesPoint {
	start := end.Add(-time.Duration(len(values)) * spacing)
	pts := make([]models.SeriesPoint, len(values))
	for i, v := range values {
		pts[i] = models.SeriesPoint{
			SeriesID:  seriesID,
			Timestamp: start.Add(time.Duration(i) * spacing),
			Value:     v,
		}
	}
	return pts
}

// NewAnomaly returns an Anomaly with sensible defaults.
func NewAnomaly(opts ...func(*analytics.Anomaly)) analytics.Anomaly {
	a := analytics.Anomaly{
		ID:          uuid.New().String(),
		SeriesID:    "probe.gateway.rtt_ms",
		Severity:    "warning",
		Type:        "chart",
		Value:       42.0,
		Expected:    12.5,
		Deviation:   3.2,
		DetectedAt:  time.Now().UTC(),
		Description: "value outside control band",
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithAnomalySeries sets the anomaly's series ID.
func WithAnomalySeries(id string) func(*analytics.Anomaly) {
	return func(a *analytics.Anomaly) { a.SeriesID = id }
}

// WithSeverity sets the anomaly severity.
func WithSeverity(sev string) func(*analytics.Anomaly) {
	return func(a *analytics.Anomaly) { a.Severity = sev }
}

// WithDetectedAt sets the detection timestamp.
func WithDetectedAt(t time.Time) func(*analytics.Anomaly) {
	return func(a *analytics.Anomaly) { a.DetectedAt = t }
}

// WithResolved marks the anomaly resolved at the given time.
func WithResolved(t time.Time) func(*analytics.Anomaly) {
	return func(a *analytics.Anomaly) { a.ResolvedAt = &t }
}

// NewBaseline returns a stable Baseline with sensible defaults.
func NewBaseline(seriesID string, opts ...func(*analytics.Baseline)) analytics.Baseline {
	b := analytics.Baseline{
		SeriesID:  seriesID,
		Algorithm: "ewma",
		Mean:      12.5,
		StdDev:    1.8,
		Samples:   120,
		Stable:    true,
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithBaselineStats sets the baseline mean and standard deviation.
func WithBaselineStats(mean, stdDev float64) func(*analytics.Baseline) {
	return func(b *analytics.Baseline) {
		b.Mean = mean
		b.StdDev = stdDev
	}
}

// NewEvaluationRun returns an EvaluationRun with sensible defaults.
func NewEvaluationRun(opts ...func(*analytics.EvaluationRun)) analytics.EvaluationRun {
	r := analytics.EvaluationRun{
		ID:            uuid.New().String(),
		Name:          "test run",
		Scorer:        "center-z",
		Polarity:      "low",
		SampleCount:   4,
		PositiveCount: 2,
		AP:            5.0 / 6.0,
		AdjustedAP:    2.0 / 3.0,
		BestCutoff:    3,
		BestCost:      1,
		FPCost:        1,
		FNCost:        5,
		CreatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithRunName sets the run name.
func WithRunName(name string) func(*analytics.EvaluationRun) {
	return func(r *analytics.EvaluationRun) { r.Name = name }
}

// WithRunCreatedAt sets the run's creation timestamp.
func WithRunCreatedAt(t time.Time) func(*analytics.EvaluationRun) {
	return func(r *analytics.EvaluationRun) { r.CreatedAt = t }
}
