package ws

import (
	"context"
	"testing"
	"time"

	"github.com/driftscope/driftscope/internal/bench"
	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/internal/event"
	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
)

func TestParseTopics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []MessageType
	}{
		{"empty means all", "", nil},
		{"single topic", "anomaly.detected", []MessageType{MessageAnomalyDetected}},
		{"multiple topics", "anomaly.detected,run.completed", []MessageType{MessageAnomalyDetected, MessageRunCompleted}},
		{"spaces trimmed", " anomaly.detected , trend.warning ", []MessageType{MessageAnomalyDetected, MessageTrendWarning}},
		{"only separators means all", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTopics(tt.raw)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("parseTopics(%q) = %v, want nil", tt.raw, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseTopics(%q) has %d topics, want %d", tt.raw, len(got), len(tt.want))
			}
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("parseTopics(%q) missing %v", tt.raw, w)
				}
			}
		})
	}
}

// testHandler wires a handler to a live bus and attaches one client
// directly to the hub.
func testHandler(t *testing.T) (*Handler, *event.Bus, *Client) {
	t.Helper()

	bus := event.NewBus(testLogger())
	h := NewHandler(nil, bus, testLogger())

	client := newTestClient("user-1")
	h.hub.Register(client)
	t.Cleanup(func() { h.hub.Unregister(client) })

	return h, bus, client
}

func expectMessage(t *testing.T, client *Client, want MessageType) Message {
	t.Helper()
	select {
	case msg := <-client.send:
		if msg.Type != want {
			t.Fatalf("received Type = %v, want %v", msg.Type, want)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %v", want)
		return Message{}
	}
}

func TestSubscribeToEvents_ForwardsAnomalies(t *testing.T) {
	_, bus, client := testHandler(t)

	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	bus.Publish(context.Background(), plugin.Event{
		Topic:     drift.TopicAnomalyDetected,
		Source:    "drift",
		Timestamp: at,
		Payload:   &analytics.Anomaly{ID: "anom-1", SeriesID: "probe.gw.rtt_ms", Severity: "critical"},
	})

	msg := expectMessage(t, client, MessageAnomalyDetected)
	if msg.SeriesID != "probe.gw.rtt_ms" {
		t.Errorf("SeriesID = %q, want probe.gw.rtt_ms", msg.SeriesID)
	}
	if !msg.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, at)
	}
	a, ok := msg.Data.(*analytics.Anomaly)
	if !ok {
		t.Fatalf("Data type = %T, want *analytics.Anomaly", msg.Data)
	}
	if a.ID != "anom-1" {
		t.Errorf("anomaly ID = %q, want anom-1", a.ID)
	}
}

func TestSubscribeToEvents_ForwardsResolutions(t *testing.T) {
	_, bus, client := testHandler(t)

	bus.Publish(context.Background(), plugin.Event{
		Topic:   drift.TopicAnomalyResolved,
		Source:  "drift",
		Payload: drift.AnomalyResolution{ID: "anom-1", ResolvedAt: time.Now()},
	})

	msg := expectMessage(t, client, MessageAnomalyResolved)
	res, ok := msg.Data.(drift.AnomalyResolution)
	if !ok {
		t.Fatalf("Data type = %T, want drift.AnomalyResolution", msg.Data)
	}
	if res.ID != "anom-1" {
		t.Errorf("resolution ID = %q, want anom-1", res.ID)
	}
}

func TestSubscribeToEvents_ForwardsEvaluationRuns(t *testing.T) {
	_, bus, client := testHandler(t)

	bus.Publish(context.Background(), plugin.Event{
		Topic:   bench.TopicRunCompleted,
		Source:  "bench",
		Payload: &analytics.EvaluationRun{ID: "run-1", AP: 0.83, BestCutoff: 3},
	})

	msg := expectMessage(t, client, MessageRunCompleted)
	run, ok := msg.Data.(*analytics.EvaluationRun)
	if !ok {
		t.Fatalf("Data type = %T, want *analytics.EvaluationRun", msg.Data)
	}
	if run.BestCutoff != 3 {
		t.Errorf("BestCutoff = %d, want 3", run.BestCutoff)
	}
}

func TestSubscribeToEvents_IgnoresUnexpectedPayloads(t *testing.T) {
	_, bus, client := testHandler(t)

	bus.Publish(context.Background(), plugin.Event{
		Topic:   drift.TopicAnomalyDetected,
		Source:  "drift",
		Payload: "not an anomaly",
	})

	select {
	case msg := <-client.send:
		t.Fatalf("unexpected message forwarded: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastError_ReachesClients(t *testing.T) {
	h, _, client := testHandler(t)

	h.BroadcastError("probe.gw.rtt_ms", "detector overflow")

	msg := expectMessage(t, client, MessageError)
	data, ok := msg.Data.(ErrorData)
	if !ok {
		t.Fatalf("Data type = %T, want ErrorData", msg.Data)
	}
	if data.Error != "detector overflow" {
		t.Errorf("Error = %q, want %q", data.Error, "detector overflow")
	}
}
