// Package probe collects round-trip latency samples from configured hosts
// and publishes them on the event bus, feeding the drift detection plugin
// with live data.
package probe

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/driftscope/driftscope/pkg/models"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ plugin.Validator     = (*Module)(nil)
	_ roles.Collector      = (*Module)(nil)
)

// Module implements the probe collector plugin.
type Module struct {
	logger *zap.Logger
	cfg    ProbeConfig
	bus    plugin.EventBus

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new probe plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "probe",
		Version:     "0.1.0",
		Description: "ICMP latency collector",
		Roles:       []string{roles.RoleCollector},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal probe config: %w", err)
		}
	}

	m.bus = deps.Bus

	m.logger.Info("probe module initialized",
		zap.Int("targets", len(m.cfg.Targets)),
		zap.Duration("interval", m.cfg.Interval))
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	if m.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", m.cfg.Interval)
	}
	if m.cfg.PingTimeout <= 0 {
		return fmt.Errorf("ping_timeout must be positive, got %v", m.cfg.PingTimeout)
	}
	if m.cfg.PingCount < 1 {
		return fmt.Errorf("ping_count must be at least 1, got %d", m.cfg.PingCount)
	}
	for i, t := range m.cfg.Targets {
		if t.Host == "" {
			return fmt.Errorf("target %d: host is required", i)
		}
	}
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	for _, t := range m.cfg.Targets {
		m.wg.Add(1)
		go m.probeLoop(t)
	}

	m.logger.Info("probe module started", zap.Int("targets", len(m.cfg.Targets)))
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("probe module stopped")
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"targets": strconv.Itoa(len(m.cfg.Targets)),
		},
	}
}

// Targets implements roles.Collector.
func (m *Module) Targets() []string {
	ids := make([]string, len(m.cfg.Targets))
	for i, t := range m.cfg.Targets {
		ids[i] = t.seriesID()
	}
	return ids
}

// probeLoop probes one target until the module stops. Each target gets its
// own goroutine so a slow host never delays the others.
func (m *Module) probeLoop(t Target) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.probeOnce(t)
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(t)
		}
	}
}

// probeOnce sends one round of pings and publishes the result.
func (m *Module) probeOnce(t Target) {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.Interval)
	defer cancel()

	rtt, ok := m.ping(ctx, t.Host)
	if !ok {
		missesTotal.WithLabelValues(t.Host).Inc()
		return
	}
	m.publishSample(t, rtt, time.Now().UTC())
}

// publishSample puts one RTT sample on the bus as a millisecond value.
func (m *Module) publishSample(t Target, rtt time.Duration, at time.Time) {
	samplesTotal.WithLabelValues(t.Host).Inc()
	m.bus.PublishAsync(m.ctx, plugin.Event{
		Topic:  TopicSample,
		Source: "probe",
		Payload: models.SeriesPoint{
			SeriesID:  t.seriesID(),
			Timestamp: at,
			Value:     float64(rtt) / float64(time.Millisecond),
		},
	})
}
