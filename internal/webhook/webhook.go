// Package webhook forwards anomaly and evaluation events to external HTTP
// endpoints as JSON POSTs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/driftscope/driftscope/internal/bench"
	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin          = (*Module)(nil)
	_ plugin.EventSubscriber = (*Module)(nil)
	_ plugin.HealthChecker   = (*Module)(nil)
	_ plugin.Validator       = (*Module)(nil)
	_ roles.Notifier         = (*Module)(nil)
)

// Config holds the webhook plugin configuration.
type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	URLs    []string      `mapstructure:"urls"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns enabled-but-unconfigured defaults; with no
// endpoints set, events are dropped with a startup warning.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Timeout: 10 * time.Second,
	}
}

// endpoints merges the single-URL shorthand with the list form.
func (c Config) endpoints() []string {
	var out []string
	if c.URL != "" {
		out = append(out, c.URL)
	}
	for _, u := range c.URLs {
		if u != "" && u != c.URL {
			out = append(out, u)
		}
	}
	return out
}

// Module implements the webhook notifier plugin.
type Module struct {
	logger *zap.Logger
	cfg    Config
	client *http.Client
}

// New creates a new webhook plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "webhook",
		Version:     "0.1.0",
		Description: "Sends HTTP POST notifications to configured webhook URLs on anomaly and evaluation events",
		Roles:       []string{roles.RoleNotification},
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal webhook config: %w", err)
		}
	}

	m.client = &http.Client{Timeout: m.cfg.Timeout}

	if m.cfg.Enabled && len(m.cfg.endpoints()) == 0 {
		m.logger.Warn("no webhook URL configured; notifications will be dropped")
	}

	m.logger.Info("webhook module initialized",
		zap.Int("endpoints", len(m.cfg.endpoints())),
		zap.Duration("timeout", m.cfg.Timeout),
		zap.Bool("enabled", m.cfg.Enabled),
	)
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	if m.cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", m.cfg.Timeout)
	}
	for _, e := range m.cfg.endpoints() {
		u, err := url.Parse(e)
		if err != nil {
			return fmt.Errorf("invalid webhook url %q: %w", e, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("webhook url %q must use http or https", e)
		}
	}
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("webhook module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("webhook module stopped")
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"enabled":   strconv.FormatBool(m.cfg.Enabled),
			"endpoints": strconv.Itoa(len(m.cfg.endpoints())),
		},
	}
}

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: drift.TopicAnomalyDetected, Handler: m.handleEvent},
		{Topic: drift.TopicAnomalyResolved, Handler: m.handleEvent},
		{Topic: drift.TopicTrendWarning, Handler: m.handleEvent},
		{Topic: bench.TopicRunCompleted, Handler: m.handleEvent},
	}
}

// WebhookPayload is the JSON body sent to each webhook URL.
type WebhookPayload struct {
	Event     string `json:"event"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// Notify implements roles.Notifier for out-of-band notifications pushed
// by other plugins.
func (m *Module) Notify(ctx context.Context, n roles.Notification) error {
	if !m.cfg.Enabled {
		return nil
	}

	payload := WebhookPayload{
		Event:     n.Topic,
		Source:    "notify",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      n,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	var errs []error
	for _, e := range m.cfg.endpoints() {
		if err := m.send(ctx, e, body, n.Topic); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Module) handleEvent(ctx context.Context, event plugin.Event) {
	endpoints := m.cfg.endpoints()
	if !m.cfg.Enabled || len(endpoints) == 0 {
		return
	}

	payload := WebhookPayload{
		Event:     event.Topic,
		Source:    event.Source,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Data:      event.Payload,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("failed to marshal webhook payload",
			zap.String("topic", event.Topic),
			zap.Error(err),
		)
		return
	}

	for _, e := range endpoints {
		if err := m.send(ctx, e, body, event.Topic); err != nil {
			m.logger.Warn("webhook delivery failed",
				zap.String("url", e),
				zap.String("topic", event.Topic),
				zap.Error(err),
			)
		}
	}
}

func (m *Module) send(ctx context.Context, endpoint string, body []byte, topic string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "DriftScope-Webhook/0.1")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	m.logger.Debug("webhook delivered",
		zap.String("topic", topic),
		zap.Int("status_code", resp.StatusCode),
	)
	return nil
}
