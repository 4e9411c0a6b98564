package ws

import "time"

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageAnomalyDetected    MessageType = "anomaly.detected"
	MessageAnomalyResolved    MessageType = "anomaly.resolved"
	MessageBaselineStable     MessageType = "baseline.stable"
	MessageTrendWarning       MessageType = "trend.warning"
	MessageCorrelationCreated MessageType = "correlation.created"
	MessageRunCompleted       MessageType = "run.completed"
	MessageError              MessageType = "error"
)

// Message is the envelope for all WebSocket messages. Data carries the
// bus payload (analytics types) unchanged; SeriesID is lifted out of the
// payload so clients can route without decoding Data.
type Message struct {
	Type      MessageType `json:"type"`
	SeriesID  string      `json:"series_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// ErrorData is the payload for error messages.
type ErrorData struct {
	Error string `json:"error"`
}
