package seed

import "time"

// SeedConfig controls the synthetic demo series. Seeding is off by
// default; a fresh install opts in via plugins.seed.enabled.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// SeriesID names the emitted series.
	SeriesID string `mapstructure:"series_id"`

	// Points is the total number of backfilled samples.
	Points int `mapstructure:"points"`

	// Spacing separates consecutive samples. The backfill is stamped
	// into the past so the newest point lands near startup time.
	Spacing time.Duration `mapstructure:"spacing"`

	// BaseValue and Noise shape the pre-shift regime: each sample is
	// BaseValue plus uniform noise in [-Noise, +Noise].
	BaseValue float64 `mapstructure:"base_value"`
	Noise     float64 `mapstructure:"noise"`

	// ShiftAfter is the index of the first shifted sample; ShiftBy is
	// added to every sample from that index on.
	ShiftAfter int     `mapstructure:"shift_after"`
	ShiftBy    float64 `mapstructure:"shift_by"`
}

// DefaultConfig returns a level-shift scenario sized for a demo: four
// hours of minutely latency around 20ms that jumps by 15ms for the
// final forty minutes.
func DefaultConfig() SeedConfig {
	return SeedConfig{
		Enabled:    false,
		SeriesID:   "demo.latency_ms",
		Points:     240,
		Spacing:    time.Minute,
		BaseValue:  20,
		Noise:      2,
		ShiftAfter: 200,
		ShiftBy:    15,
	}
}
