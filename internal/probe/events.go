package probe

// Event topics published by the probe module.
const (
	// TopicSample carries one models.SeriesPoint per received probe.
	TopicSample = "probe.sample"
)
