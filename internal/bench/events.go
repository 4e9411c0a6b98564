package bench

// Event topics published by the bench module.
const (
	TopicRunCompleted = "bench.run.completed"
)
