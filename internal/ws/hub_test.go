package ws

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/driftscope/driftscope/pkg/analytics"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestClient(userID string, topics ...MessageType) *Client {
	var filter map[MessageType]bool
	if len(topics) > 0 {
		filter = make(map[MessageType]bool)
		for _, t := range topics {
			filter[t] = true
		}
	}
	return &Client{
		conn:   nil, // Not needed for hub tests
		userID: userID,
		topics: filter,
		send:   make(chan Message, 256),
		logger: testLogger(),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger())

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.clients == nil {
		t.Error("hub.clients map is nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestRegister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")

	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.mu.RLock()
	_, exists := hub.clients[client]
	hub.mu.RUnlock()

	if !exists {
		t.Error("client not found in hub.clients map")
	}
}

func TestRegisterMultipleClients(t *testing.T) {
	hub := NewHub(testLogger())

	tests := []struct {
		name   string
		userID string
	}{
		{name: "first client", userID: "user-1"},
		{name: "second client", userID: "user-2"},
		{name: "third client", userID: "user-3"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(tt.userID)
			hub.Register(client)

			wantCount := i + 1
			if hub.ClientCount() != wantCount {
				t.Errorf("ClientCount() = %d, want %d", hub.ClientCount(), wantCount)
			}
		})
	}
}

func TestUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")

	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	hub.mu.RLock()
	_, exists := hub.clients[client]
	hub.mu.RUnlock()

	if exists {
		t.Error("client still exists in hub.clients map after unregister")
	}

	// Verify channel is closed by attempting to receive.
	_, ok := <-client.send
	if ok {
		t.Error("client.send channel is not closed")
	}
}

func TestUnregisterNotRegistered(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")

	// Unregister without registering first should not panic.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Unregister() panicked: %v", r)
		}
	}()

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	// Channel should not be closed if client was never registered.
	select {
	case _, ok := <-client.send:
		if !ok {
			t.Error("channel closed for unregistered client")
		}
	default:
		// Channel is empty and not closed, as expected.
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	client1 := newTestClient("user-1")
	client2 := newTestClient("user-2")
	client3 := newTestClient("user-3")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	msg := Message{
		Type:      MessageAnomalyDetected,
		SeriesID:  "probe.gateway.rtt_ms",
		Timestamp: time.Now(),
		Data:      &analytics.Anomaly{ID: "anom-1", SeriesID: "probe.gateway.rtt_ms", Severity: "critical"},
	}

	hub.Broadcast(msg)

	// Verify all clients received the message.
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case received := <-client.send:
			if received.Type != MessageAnomalyDetected {
				t.Errorf("client %d received Type = %v, want %v", i+1, received.Type, MessageAnomalyDetected)
			}
			if received.SeriesID != "probe.gateway.rtt_ms" {
				t.Errorf("client %d received SeriesID = %v, want probe.gateway.rtt_ms", i+1, received.SeriesID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestBroadcast_RespectsTopicFilter(t *testing.T) {
	hub := NewHub(testLogger())

	anomaliesOnly := newTestClient("user-1", MessageAnomalyDetected)
	everything := newTestClient("user-2")
	hub.Register(anomaliesOnly)
	hub.Register(everything)

	hub.Broadcast(Message{Type: MessageRunCompleted, Timestamp: time.Now()})
	hub.Broadcast(Message{Type: MessageAnomalyDetected, SeriesID: "demo.x", Timestamp: time.Now()})

	// The filtered client sees only the anomaly.
	select {
	case received := <-anomaliesOnly.send:
		if received.Type != MessageAnomalyDetected {
			t.Errorf("filtered client received %v, want %v", received.Type, MessageAnomalyDetected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("filtered client did not receive the anomaly message")
	}
	select {
	case received := <-anomaliesOnly.send:
		t.Errorf("filtered client received unexpected extra message %v", received.Type)
	default:
	}

	// The unfiltered client sees both, in order.
	for _, want := range []MessageType{MessageRunCompleted, MessageAnomalyDetected} {
		select {
		case received := <-everything.send:
			if received.Type != want {
				t.Errorf("unfiltered client received %v, want %v", received.Type, want)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("unfiltered client did not receive %v", want)
		}
	}
}

func TestClientWants(t *testing.T) {
	tests := []struct {
		name   string
		topics []MessageType
		check  MessageType
		want   bool
	}{
		{"no filter receives all", nil, MessageRunCompleted, true},
		{"matching topic", []MessageType{MessageAnomalyDetected}, MessageAnomalyDetected, true},
		{"non-matching topic", []MessageType{MessageAnomalyDetected}, MessageTrendWarning, false},
		{"multiple topics", []MessageType{MessageAnomalyDetected, MessageTrendWarning}, MessageTrendWarning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient("user-1", tt.topics...)
			if got := c.wants(tt.check); got != tt.want {
				t.Errorf("wants(%v) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(testLogger())

	msg := Message{
		Type:      MessageBaselineStable,
		SeriesID:  "demo.latency_ms",
		Timestamp: time.Now(),
		Data:      &analytics.Baseline{SeriesID: "demo.latency_ms", Stable: true},
	}

	// Should not panic.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Broadcast() to empty hub panicked: %v", r)
		}
	}()

	hub.Broadcast(msg)
}

func TestBroadcastDropsMessagesWhenBufferFull(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")

	hub.Register(client)

	// Fill the client's send buffer (capacity is 256).
	for i := 0; i < 256; i++ {
		client.send <- Message{
			Type:      MessageBaselineStable,
			SeriesID:  "fill",
			Timestamp: time.Now(),
		}
	}

	if len(client.send) != 256 {
		t.Fatalf("client.send buffer length = %d, want 256", len(client.send))
	}

	// Broadcast one more message -- should be dropped since buffer is full.
	msg := Message{
		Type:      MessageError,
		SeriesID:  "dropped",
		Timestamp: time.Now(),
		Data:      ErrorData{Error: "test error"},
	}

	hub.Broadcast(msg)

	if len(client.send) != 256 {
		t.Errorf("client.send buffer length = %d, want 256 (message should have been dropped)", len(client.send))
	}

	// Drain one message and verify it's not the dropped message.
	received := <-client.send
	if received.SeriesID == "dropped" {
		t.Error("dropped message was unexpectedly received")
	}
}

func TestConcurrentRegisterUnregisterBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	numClients := 50
	numBroadcasts := 100

	// Concurrently register and unregister clients.
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client := newTestClient(string(rune('a' + id)))
			hub.Register(client)

			// Drain messages to prevent buffer from filling.
			go func() {
				for range client.send {
					// Discard messages.
				}
			}()

			time.Sleep(10 * time.Millisecond)
			hub.Unregister(client)
		}(i)
	}

	// Concurrently broadcast messages.
	for i := 0; i < numBroadcasts; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			msg := Message{
				Type:      MessageAnomalyDetected,
				SeriesID:  "concurrent-test",
				Timestamp: time.Now(),
				Data:      &analytics.Anomaly{ID: "anom", Value: float64(id)},
			}
			hub.Broadcast(msg)
		}(i)
	}

	wg.Wait()

	// After all goroutines complete, hub should be stable.
	finalCount := hub.ClientCount()
	if finalCount < 0 {
		t.Errorf("ClientCount() = %d, should not be negative", finalCount)
	}
}

func TestConcurrentClientCount(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	var countSum int64

	// Register some clients.
	for i := 0; i < 10; i++ {
		hub.Register(newTestClient(string(rune('a' + i))))
	}

	// Concurrently call ClientCount.
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count := hub.ClientCount()
			atomic.AddInt64(&countSum, int64(count))
		}()
	}

	wg.Wait()

	expectedSum := int64(10 * 100)
	if countSum != expectedSum {
		t.Errorf("sum of all ClientCount() calls = %d, want %d", countSum, expectedSum)
	}
}

func TestBroadcastMessageTypes(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")
	hub.Register(client)

	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "anomaly detected",
			msg: Message{
				Type:      MessageAnomalyDetected,
				SeriesID:  "probe.gw.rtt_ms",
				Timestamp: time.Now(),
				Data:      &analytics.Anomaly{ID: "anom-1", SeriesID: "probe.gw.rtt_ms", Type: "cusum"},
			},
		},
		{
			name: "baseline stable",
			msg: Message{
				Type:      MessageBaselineStable,
				SeriesID:  "probe.gw.rtt_ms",
				Timestamp: time.Now(),
				Data:      &analytics.Baseline{SeriesID: "probe.gw.rtt_ms", Mean: 12.5, Stable: true},
			},
		},
		{
			name: "trend warning",
			msg: Message{
				Type:      MessageTrendWarning,
				SeriesID:  "probe.gw.rtt_ms",
				Timestamp: time.Now(),
				Data:      &analytics.TrendEstimate{SeriesID: "probe.gw.rtt_ms", Slope: 1.8, R2: 0.92},
			},
		},
		{
			name: "run completed",
			msg: Message{
				Type:      MessageRunCompleted,
				Timestamp: time.Now(),
				Data:      &analytics.EvaluationRun{ID: "run-1", AP: 0.83},
			},
		},
		{
			name: "error",
			msg: Message{
				Type:      MessageError,
				SeriesID:  "probe.gw.rtt_ms",
				Timestamp: time.Now(),
				Data:      ErrorData{Error: "detector overflow"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.Broadcast(tt.msg)

			select {
			case received := <-client.send:
				if received.Type != tt.msg.Type {
					t.Errorf("received Type = %v, want %v", received.Type, tt.msg.Type)
				}
				if received.SeriesID != tt.msg.SeriesID {
					t.Errorf("received SeriesID = %v, want %v", received.SeriesID, tt.msg.SeriesID)
				}
			case <-time.After(100 * time.Millisecond):
				t.Error("client did not receive message")
			}
		})
	}
}

func TestClientChannelCapacity(t *testing.T) {
	client := newTestClient("user-1")

	if cap(client.send) != 256 {
		t.Errorf("client.send channel capacity = %d, want 256", cap(client.send))
	}
}

func TestUnregisterTwice(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("user-1")

	hub.Register(client)
	hub.Unregister(client)

	// Second unregister should not panic or cause issues.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("second Unregister() panicked: %v", r)
		}
	}()

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}
