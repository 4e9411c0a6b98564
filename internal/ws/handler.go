// Package ws streams detection and evaluation events to browsers over
// WebSocket.
package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/driftscope/driftscope/internal/auth"
	"github.com/driftscope/driftscope/internal/bench"
	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
	"go.uber.org/zap"
)

// Handler provides WebSocket endpoints for real-time event streaming.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenService
	bus    plugin.EventBus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to drift and
// bench events.
func NewHandler(tokens *auth.TokenService, bus plugin.EventBus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		tokens: tokens,
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/events", h.handleEventStream)
}

// handleEventStream upgrades the connection to WebSocket and streams
// events, optionally filtered by the topics query parameter.
func (h *Handler) handleEventStream(w http.ResponseWriter, r *http.Request) {
	// Validate JWT from query parameter (browser WS API doesn't support headers).
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin checks are skipped because access is gated by the JWT.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		userID: claims.UserID,
		topics: parseTopics(r.URL.Query().Get("topics")),
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until the client disconnects.
	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// parseTopics turns a comma-separated topics parameter into a filter set.
// Empty input means no filtering.
func parseTopics(raw string) map[MessageType]bool {
	if raw == "" {
		return nil
	}
	topics := make(map[MessageType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics[MessageType(t)] = true
		}
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}

// subscribeToEvents forwards drift and bench bus events to connected
// WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(drift.TopicAnomalyDetected, func(_ context.Context, event plugin.Event) {
		a, ok := event.Payload.(*analytics.Anomaly)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAnomalyDetected,
			SeriesID:  a.SeriesID,
			Timestamp: event.Timestamp,
			Data:      a,
		})
	})

	h.bus.Subscribe(drift.TopicAnomalyResolved, func(_ context.Context, event plugin.Event) {
		res, ok := event.Payload.(drift.AnomalyResolution)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAnomalyResolved,
			Timestamp: event.Timestamp,
			Data:      res,
		})
	})

	h.bus.Subscribe(drift.TopicBaselineStable, func(_ context.Context, event plugin.Event) {
		b, ok := event.Payload.(*analytics.Baseline)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageBaselineStable,
			SeriesID:  b.SeriesID,
			Timestamp: event.Timestamp,
			Data:      b,
		})
	})

	h.bus.Subscribe(drift.TopicTrendWarning, func(_ context.Context, event plugin.Event) {
		est, ok := event.Payload.(*analytics.TrendEstimate)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageTrendWarning,
			SeriesID:  est.SeriesID,
			Timestamp: event.Timestamp,
			Data:      est,
		})
	})

	h.bus.Subscribe(drift.TopicCorrelationCreated, func(_ context.Context, event plugin.Event) {
		g, ok := event.Payload.(*analytics.AlertGroup)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageCorrelationCreated,
			SeriesID:  g.RootSeries,
			Timestamp: event.Timestamp,
			Data:      g,
		})
	})

	h.bus.Subscribe(bench.TopicRunCompleted, func(_ context.Context, event plugin.Event) {
		run, ok := event.Payload.(*analytics.EvaluationRun)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageRunCompleted,
			Timestamp: event.Timestamp,
			Data:      run,
		})
	})

	h.logger.Info("subscribed to drift and bench events for WebSocket broadcasting")
}

// BroadcastError sends an error message to all connected clients.
func (h *Handler) BroadcastError(seriesID, errMsg string) {
	h.hub.Broadcast(Message{
		Type:      MessageError,
		SeriesID:  seriesID,
		Timestamp: time.Now(),
		Data: ErrorData{
			Error: errMsg,
		},
	})
}
