package drift

import "time"

// Event topics consumed by the drift module.
const (
	TopicProbeSample = "probe.sample"
	TopicSeedSample  = "seed.sample"
)

// Event topics published by the drift module.
const (
	TopicAnomalyDetected    = "drift.anomaly.detected"
	TopicAnomalyResolved    = "drift.anomaly.resolved"
	TopicBaselineStable     = "drift.baseline.stable"
	TopicTrendWarning       = "drift.trend.warning"
	TopicCorrelationCreated = "drift.correlation.created"
)

// AnomalyResolution is the payload for TopicAnomalyResolved.
type AnomalyResolution struct {
	ID         string    `json:"id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
