package drift

import "time"

// DriftConfig holds configuration for the drift detection plugin.
type DriftConfig struct {
	// Baseline selects the per-series estimator: "ewma", "cumulative",
	// or "rolling".
	Baseline       string  `mapstructure:"baseline"`
	EWMAAlpha      float64 `mapstructure:"ewma_alpha"`
	RollingWindow  int     `mapstructure:"rolling_window"`
	MinSamples     int     `mapstructure:"min_samples"`
	ChartLimit     float64 `mapstructure:"chart_limit"`
	CUSUMShift     float64 `mapstructure:"cusum_shift"`     // Slack k, in stddev units
	CUSUMThreshold float64 `mapstructure:"cusum_threshold"` // Decision limit h, in stddev units

	// Holt-Winters seasonal model parameters.
	HWAlpha      float64 `mapstructure:"hw_alpha"`      // Level smoothing (0-1)
	HWBeta       float64 `mapstructure:"hw_beta"`       // Trend smoothing (0-1)
	HWGamma      float64 `mapstructure:"hw_gamma"`      // Seasonal smoothing (0-1)
	HWSeasonLen  int     `mapstructure:"hw_season_len"` // Points per season (24=daily, 168=weekly)
	HWConfidence float64 `mapstructure:"hw_confidence"` // Confidence level for expected range (0-1)

	// Trend regression settings.
	TrendWindow   time.Duration `mapstructure:"trend_window"`
	TrendMinR2    float64       `mapstructure:"trend_min_r2"`
	TrendMinSlope float64       `mapstructure:"trend_min_slope"` // Units per hour, absolute

	// Correlation settings.
	CorrelationWindow time.Duration `mapstructure:"correlation_window"`

	// Retention and housekeeping.
	StalenessWindow     time.Duration `mapstructure:"staleness_window"`
	ArchiveAfter        time.Duration `mapstructure:"archive_after"`
	ArchiveRetention    time.Duration `mapstructure:"archive_retention"`
	AnomalyRetention    time.Duration `mapstructure:"anomaly_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns sensible defaults for the drift module.
func DefaultConfig() DriftConfig {
	return DriftConfig{
		Baseline:       "ewma",
		EWMAAlpha:      0.1,
		RollingWindow:  120,
		MinSamples:     30,
		ChartLimit:     3.0,
		CUSUMShift:     0.5,
		CUSUMThreshold: 5.0,

		HWAlpha:      0.3,
		HWBeta:       0.1,
		HWGamma:      0.3,
		HWSeasonLen:  24,
		HWConfidence: 0.95,

		TrendWindow:   24 * time.Hour,
		TrendMinR2:    0.6,
		TrendMinSlope: 1.0,

		CorrelationWindow: 5 * time.Minute,

		StalenessWindow:     30 * time.Minute,
		ArchiveAfter:        24 * time.Hour,
		ArchiveRetention:    30 * 24 * time.Hour,
		AnomalyRetention:    30 * 24 * time.Hour,
		MaintenanceInterval: 5 * time.Minute,
	}
}
