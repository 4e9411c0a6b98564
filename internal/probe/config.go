package probe

import "time"

// Target is one host to probe. Name keys the series ID; it falls back to
// the host when unset.
type Target struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
}

// seriesID returns the series this target's samples land on.
func (t Target) seriesID() string {
	name := t.Name
	if name == "" {
		name = t.Host
	}
	return "probe." + name + ".rtt_ms"
}

// ProbeConfig holds configuration for the probe collector plugin.
type ProbeConfig struct {
	Targets     []Target      `mapstructure:"targets"`
	Interval    time.Duration `mapstructure:"interval"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
	PingCount   int           `mapstructure:"ping_count"`
}

// DefaultConfig returns sensible defaults for the probe module. No targets
// are probed until some are configured.
func DefaultConfig() ProbeConfig {
	return ProbeConfig{
		Interval:    30 * time.Second,
		PingTimeout: 5 * time.Second,
		PingCount:   3,
	}
}
