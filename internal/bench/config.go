package bench

// BenchConfig holds configuration for the bench evaluation plugin.
type BenchConfig struct {
	// Default unit costs for the expected-cost curve. Per-run overrides
	// in the evaluation request take precedence.
	FPCost float64 `mapstructure:"fp_cost"` // Cost of alerting on a normal sample
	FNCost float64 `mapstructure:"fn_cost"` // Cost of missing a true anomaly

	// MaxSamples caps the size of one evaluation request.
	MaxSamples int `mapstructure:"max_samples"`
}

// DefaultConfig returns sensible defaults for the bench module. Missed
// anomalies default to five times the cost of a false alert, matching the
// usual asymmetry in monitoring setups.
func DefaultConfig() BenchConfig {
	return BenchConfig{
		FPCost:     1.0,
		FNCost:     5.0,
		MaxSamples: 100000,
	}
}
