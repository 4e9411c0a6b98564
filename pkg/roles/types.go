package roles

// EvaluationRequest carries a labeled score set to grade. Exactly one of
// Scores or (Scorer, Values) must be populated: either the caller scored the
// samples already, or it names a registered scorer to run over Values.
type EvaluationRequest struct {
	Name     string    `json:"name"`
	Notes    string    `json:"notes,omitempty"`
	Polarity string    `json:"polarity,omitempty"` // "low" (default) or "high"
	Labels   []bool    `json:"labels"`
	Scores   []float64 `json:"scores,omitempty"`
	Scorer   string    `json:"scorer,omitempty"`
	Values   []float64 `json:"values,omitempty"`
	NMax     int       `json:"n_max,omitempty"` // 0 means full length
	// Optional per-run cost overrides; zero values fall back to config.
	FalsePositiveCost float64 `json:"false_positive_cost,omitempty"`
	FalseNegativeCost float64 `json:"false_negative_cost,omitempty"`
}

// Notification represents a message to be delivered by a Notifier.
type Notification struct {
	Topic   string         `json:"topic"`
	Summary string         `json:"summary"`
	Body    string         `json:"body,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}
