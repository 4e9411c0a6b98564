// Package analytics provides public SDK types for the DriftScope analytics system.
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package analytics

import "time"

// Anomaly represents a detected anomaly on a tracked series.
type Anomaly struct {
	ID          string     `json:"id"`
	SeriesID    string     `json:"series_id"`
	Severity    string     `json:"severity"`  // "warning", "critical"
	Type        string     `json:"type"`      // "chart", "cusum", "holt_winters"
	Value       float64    `json:"value"`     // Observed value
	Expected    float64    `json:"expected"`  // Baseline expected value
	Deviation   float64    `json:"deviation"` // Distance from baseline (sigma or sum units)
	DetectedAt  time.Time  `json:"detected_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Description string     `json:"description"`
}

// Baseline represents a learned baseline for a series.
type Baseline struct {
	SeriesID  string    `json:"series_id"`
	Algorithm string    `json:"algorithm"` // "ewma", "cumulative", "rolling"
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std_dev"`
	Samples   int       `json:"samples"`
	Stable    bool      `json:"stable"` // true after learning period
	UpdatedAt time.Time `json:"updated_at"`
}

// TrendEstimate represents a fitted linear trend over a series window.
type TrendEstimate struct {
	SeriesID    string         `json:"series_id"`
	Slope       float64        `json:"slope"` // Units per hour
	Intercept   float64        `json:"intercept"`
	R2          float64        `json:"r2"` // Fit quality, 0.0-1.0
	Predicted   float64        `json:"predicted"`
	Limit       float64        `json:"limit,omitempty"`
	TimeToLimit *time.Duration `json:"time_to_limit,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// AlertGroup represents a set of anomalies correlated across series.
type AlertGroup struct {
	ID          string    `json:"id"`
	RootSeries  string    `json:"root_series,omitempty"` // Earliest series in the group
	SeriesIDs   []string  `json:"series_ids"`
	AnomalyIDs  []string  `json:"anomaly_ids"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
}

// EvaluationRun summarizes one graded scorer evaluation.
type EvaluationRun struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Scorer        string    `json:"scorer,omitempty"` // Empty when scores were supplied directly
	Polarity      string    `json:"polarity"`         // "low" or "high"; input orientation
	SampleCount   int       `json:"sample_count"`
	PositiveCount int       `json:"positive_count"`
	AP            float64   `json:"ap"`
	AdjustedAP    float64   `json:"adjusted_ap"`
	BestCutoff    int       `json:"best_cutoff"` // Rank n with the lowest expected cost; 0 means never alert
	BestCost      float64   `json:"best_cost"`
	FPCost        float64   `json:"fp_cost"` // Unit cost of a false alert
	FNCost        float64   `json:"fn_cost"` // Unit cost of a missed anomaly
	CreatedAt     time.Time `json:"created_at"`
	Notes         string    `json:"notes,omitempty"`
}

// PrecisionPoint is one rank on an evaluation's precision/cost curve.
type PrecisionPoint struct {
	N         int     `json:"n"`
	Precision float64 `json:"precision"`
	Adjusted  float64 `json:"adjusted"`
	Cost      float64 `json:"cost"`
}

// ScorerInfo describes a registered anomaly scorer. Polarity declares the
// orientation of the raw scores the scorer emits; "low" means lower scores
// mark more anomalous samples.
type ScorerInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Polarity    string `json:"polarity"` // "low" or "high"
}
