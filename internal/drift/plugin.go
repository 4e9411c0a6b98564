package drift

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/driftscope/driftscope/internal/drift/baseline"
	"github.com/driftscope/driftscope/internal/drift/chart"
	"github.com/driftscope/driftscope/internal/drift/correlate"
	"github.com/driftscope/driftscope/internal/drift/trend"
	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/models"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/roles"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin           = (*Module)(nil)
	_ plugin.HTTPProvider     = (*Module)(nil)
	_ plugin.HealthChecker    = (*Module)(nil)
	_ plugin.EventSubscriber  = (*Module)(nil)
	_ plugin.Validator        = (*Module)(nil)
	_ roles.DetectionProvider = (*Module)(nil)
	_ roles.SampleSink        = (*Module)(nil)
)

// Module implements the drift detection plugin.
type Module struct {
	logger     *zap.Logger
	cfg        DriftConfig
	store      *DriftStore
	bus        plugin.EventBus
	states     *stateManager
	correlator *correlate.Engine

	mu         sync.Mutex
	correlated map[string]time.Time // Anomaly IDs already placed in a group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new drift plugin instance.
func New() *Module {
	return &Module{
		correlated: make(map[string]time.Time),
	}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "drift",
		Version:     "0.1.0",
		Description: "Baseline learning and drift detection over sample series",
		Roles:       []string{roles.RoleDetection},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal drift config: %w", err)
		}
	}

	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "drift", migrations()); err != nil {
			return fmt.Errorf("drift migrations: %w", err)
		}
		m.store = NewDriftStore(deps.Store.DB())
	}

	m.bus = deps.Bus
	m.states = newStateManager(m.cfg)
	m.correlator = correlate.NewEngine(m.cfg.CorrelationWindow, m.logger)

	m.logger.Info("drift module initialized",
		zap.String("baseline", m.cfg.Baseline),
		zap.Int("min_samples", m.cfg.MinSamples),
		zap.Float64("chart_limit", m.cfg.ChartLimit),
		zap.Float64("cusum_shift", m.cfg.CUSUMShift),
		zap.Float64("cusum_threshold", m.cfg.CUSUMThreshold),
		zap.Int("hw_season_len", m.cfg.HWSeasonLen),
		zap.Duration("correlation_window", m.cfg.CorrelationWindow),
	)
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	if _, err := baseline.New(m.cfg.Baseline, m.cfg.EWMAAlpha, m.cfg.RollingWindow); err != nil {
		return err
	}
	if m.cfg.EWMAAlpha <= 0 || m.cfg.EWMAAlpha > 1 {
		return fmt.Errorf("ewma_alpha must be in (0, 1], got %v", m.cfg.EWMAAlpha)
	}
	if m.cfg.MinSamples < 1 {
		return fmt.Errorf("min_samples must be at least 1, got %d", m.cfg.MinSamples)
	}
	if m.cfg.ChartLimit <= 0 {
		return fmt.Errorf("chart_limit must be positive, got %v", m.cfg.ChartLimit)
	}
	if m.cfg.CUSUMShift < 0 {
		return fmt.Errorf("cusum_shift must not be negative, got %v", m.cfg.CUSUMShift)
	}
	if m.cfg.CUSUMThreshold <= 0 {
		return fmt.Errorf("cusum_threshold must be positive, got %v", m.cfg.CUSUMThreshold)
	}
	if m.cfg.HWConfidence <= 0 || m.cfg.HWConfidence >= 1 {
		return fmt.Errorf("hw_confidence must be in (0, 1), got %v", m.cfg.HWConfidence)
	}
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.startMaintenance()
	m.logger.Info("drift module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("drift module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	count := 0
	if m.states != nil {
		count = m.states.count()
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"series_tracked": strconv.Itoa(count),
		},
	}
}

// -- plugin.EventSubscriber --

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: TopicProbeSample, Handler: m.handleSample},
		{Topic: TopicSeedSample, Handler: m.handleSample},
	}
}

// -- Event Handlers --

// handleSample is the detection pipeline entry point for bus-delivered
// samples. Single points and batches are both accepted.
func (m *Module) handleSample(_ context.Context, event plugin.Event) {
	source := sourceForTopic(event.Topic)
	switch p := event.Payload.(type) {
	case models.SeriesPoint:
		m.processSample(&p, source)
	case *models.SeriesPoint:
		m.processSample(p, source)
	case []models.SeriesPoint:
		for i := range p {
			m.processSample(&p[i], source)
		}
	default:
		m.logger.Debug("ignored sample event: unexpected payload type",
			zap.String("topic", event.Topic),
			zap.String("source", event.Source))
	}
}

func sourceForTopic(topic string) models.SourceKind {
	switch topic {
	case TopicProbeSample:
		return models.SourceProbe
	case TopicSeedSample:
		return models.SourceSynthetic
	default:
		return models.SourceIngest
	}
}

// processSample persists one sample and runs it through the detectors.
func (m *Module) processSample(p *models.SeriesPoint, source models.SourceKind) {
	if p.SeriesID == "" {
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}

	state := m.states.getOrCreate(p.SeriesID)

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if state.Estimator.Samples() == 0 {
			if err := m.store.EnsureSeries(ctx, p.SeriesID, p.SeriesID, source, p.Timestamp); err != nil {
				m.logger.Warn("failed to register series", zap.Error(err))
			}
		}
		if err := m.store.InsertPoint(ctx, p); err != nil {
			m.logger.Warn("failed to store point", zap.Error(err))
		}
		if err := m.store.TouchSeries(ctx, p.SeriesID, p.Timestamp); err != nil {
			m.logger.Warn("failed to touch series", zap.Error(err))
		}
	}

	m.analyzeSample(state, p)
}

// analyzeSample updates a series' baseline models and runs the detectors.
// When Holt-Winters has accumulated enough seasonal data (>= 2 * season_len)
// it drives anomaly detection via its expected range; otherwise the control
// chart on the running baseline is used. CUSUM always accumulates once the
// learning period is over, so slow drifts are caught regardless.
func (m *Module) analyzeSample(state *seriesState, p *models.SeriesPoint) {
	// A long silence means the world likely changed while we were not
	// looking. Clear the accumulated CUSUM sums so the detector re-arms
	// against the resumed stream instead of stale history.
	if !state.LastSample.IsZero() && p.Timestamp.Sub(state.LastSample) > m.cfg.StalenessWindow {
		state.Detector.Reset()
		if m.store != nil && state.Stable {
			ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
			defer cancel()
			if err := m.store.SetSeriesStatus(ctx, p.SeriesID, models.SeriesStatusActive); err != nil {
				m.logger.Warn("failed to reactivate series", zap.Error(err))
			}
		}
		m.logger.Debug("series resumed after staleness gap",
			zap.String("series_id", p.SeriesID),
			zap.Duration("gap", p.Timestamp.Sub(state.LastSample)))
	}

	// Capture pre-update stats so the sample is judged against the
	// baseline it arrived under, not one it already influenced.
	prevMean := state.Estimator.Mean()
	prevStdDev := state.Estimator.StdDev()
	state.Estimator.Update(p.Value)
	state.HW.Update(p.Value)
	state.LastSample = p.Timestamp

	// Skip anomaly detection during the learning period.
	if state.Estimator.Samples() < m.cfg.MinSamples {
		return
	}
	if !state.Stable {
		state.Stable = true
		m.markStable(state, p.SeriesID)
	}

	// Holt-Winters seasonal detection: use when the model has seen at
	// least two full seasons.
	hwUsed := false
	if state.HW.IsInitialized() && state.HW.Samples >= 2*m.cfg.HWSeasonLen {
		lower, upper := state.HW.ExpectedRange(m.cfg.HWConfidence)
		if lower != upper && (p.Value < lower || p.Value > upper) {
			fitted := state.HW.Fitted()
			severity := chart.SeverityWarning
			if p.Value < lower-(upper-lower) || p.Value > upper+(upper-lower) {
				severity = chart.SeverityCritical
			}
			m.recordAnomaly(p, "holt_winters", severity, p.Value-fitted, fitted)
			hwUsed = true
		}
	}

	// Control chart fallback when Holt-Winters did not flag (or is not
	// ready yet).
	if !hwUsed {
		sig := chart.Check(p.Value, prevMean, prevStdDev, m.cfg.ChartLimit)
		if sig.Breach {
			m.recordAnomaly(p, "chart", sig.Severity, sig.Sigma, prevMean)
		}
	}

	// CUSUM on the normalized sample -- always runs for change-point
	// detection. Normalizing keeps the detector's shift and threshold in
	// stddev units while the baseline moves underneath it.
	if prevStdDev > 0 {
		step := state.Detector.Update((p.Value - prevMean) / prevStdDev)
		if step.Anomalous {
			m.recordAnomaly(p, "cusum", chart.SeverityWarning, step.High+step.Low, prevMean)
		}
	}

	// Periodically re-fit the linear trend (every 100 samples).
	if state.Estimator.Samples()%100 == 0 && m.store != nil {
		m.runTrendCheck(p.SeriesID)
	}
}

// markStable records the end of a series' learning period: status flip,
// first baseline snapshot, and a bus notification.
func (m *Module) markStable(state *seriesState, seriesID string) {
	b := m.baselineFromState(seriesID, state)

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if err := m.store.SetSeriesStatus(ctx, seriesID, models.SeriesStatusActive); err != nil {
			m.logger.Warn("failed to activate series", zap.Error(err))
		}
		if err := m.store.UpsertBaseline(ctx, b); err != nil {
			m.logger.Warn("failed to store baseline", zap.Error(err))
		}
	}

	m.logger.Info("baseline stable, detectors armed",
		zap.String("series_id", seriesID),
		zap.Float64("mean", b.Mean),
		zap.Float64("std_dev", b.StdDev),
		zap.Int("samples", b.Samples))

	if m.bus != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicBaselineStable,
			Source:  "drift",
			Payload: b,
		})
	}
}

func (m *Module) baselineFromState(seriesID string, state *seriesState) *analytics.Baseline {
	return &analytics.Baseline{
		SeriesID:  seriesID,
		Algorithm: m.cfg.Baseline,
		Mean:      state.Estimator.Mean(),
		StdDev:    state.Estimator.StdDev(),
		Samples:   state.Estimator.Samples(),
		Stable:    state.Stable,
		UpdatedAt: time.Now(),
	}
}

// recordAnomaly stores an anomaly, bumps the counter, and publishes an event.
func (m *Module) recordAnomaly(p *models.SeriesPoint, anomalyType, severity string, deviation, expected float64) {
	a := &analytics.Anomaly{
		ID:          uuid.NewString(),
		SeriesID:    p.SeriesID,
		Severity:    severity,
		Type:        anomalyType,
		Value:       p.Value,
		Expected:    expected,
		Deviation:   deviation,
		DetectedAt:  p.Timestamp,
		Description: fmt.Sprintf("%s anomaly on %s: value=%.2f expected=%.2f deviation=%.2f", anomalyType, p.SeriesID, p.Value, expected, deviation),
	}

	m.logger.Info("anomaly detected",
		zap.String("series_id", p.SeriesID),
		zap.String("type", anomalyType),
		zap.String("severity", severity),
		zap.Float64("value", p.Value),
		zap.Float64("expected", expected))

	anomaliesTotal.WithLabelValues(p.SeriesID, anomalyType).Inc()

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if err := m.store.InsertAnomaly(ctx, a); err != nil {
			m.logger.Warn("failed to store anomaly", zap.Error(err))
		}
	}

	if m.bus != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicAnomalyDetected,
			Source:  "drift",
			Payload: a,
		})
	}
}

// runTrendCheck fits a linear trend over the recent window and publishes a
// warning when a well-fitted slope is steep enough to matter.
func (m *Module) runTrendCheck(seriesID string) {
	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	defer cancel()

	since := time.Now().Add(-m.cfg.TrendWindow)
	points, err := m.store.GetPointWindow(ctx, seriesID, since)
	if err != nil || len(points) < 2 {
		return
	}

	timestamps := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		timestamps[i] = p.Timestamp
		values[i] = p.Value
	}

	est := trend.Fit(trend.HoursFromStart(timestamps), values, 0)
	if est == nil {
		return
	}
	if est.R2 < m.cfg.TrendMinR2 || est.Slope == 0 {
		return
	}
	if est.Slope < m.cfg.TrendMinSlope && est.Slope > -m.cfg.TrendMinSlope {
		return
	}

	t := &analytics.TrendEstimate{
		SeriesID:    seriesID,
		Slope:       est.Slope,
		Intercept:   est.Intercept,
		R2:          est.R2,
		Predicted:   est.Predicted,
		GeneratedAt: time.Now(),
	}

	m.logger.Info("trend warning",
		zap.String("series_id", seriesID),
		zap.Float64("slope_per_hour", est.Slope),
		zap.Float64("r2", est.R2))

	if m.bus != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicTrendWarning,
			Source:  "drift",
			Payload: t,
		})
	}
}

// -- roles.DetectionProvider --

// RecentAnomalies implements roles.DetectionProvider.
func (m *Module) RecentAnomalies(ctx context.Context, seriesID string) ([]analytics.Anomaly, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListAnomalies(ctx, AnomalyFilter{SeriesID: seriesID, Limit: 100})
}

// BaselineFor implements roles.DetectionProvider.
func (m *Module) BaselineFor(ctx context.Context, seriesID string) (*analytics.Baseline, error) {
	if state, ok := m.states.lookup(seriesID); ok {
		if !state.Stable {
			return nil, nil
		}
		return m.baselineFromState(seriesID, state), nil
	}
	if m.store == nil {
		return nil, nil
	}
	b, err := m.store.GetBaseline(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if b == nil || !b.Stable {
		return nil, nil
	}
	return b, nil
}

// -- roles.SampleSink --

// Ingest implements roles.SampleSink. Points are persisted in one batch,
// then analyzed in order.
func (m *Module) Ingest(ctx context.Context, points []models.SeriesPoint) error {
	for i := range points {
		if points[i].SeriesID == "" {
			return fmt.Errorf("point %d: series_id is required", i)
		}
		if points[i].Timestamp.IsZero() {
			points[i].Timestamp = time.Now()
		}
	}

	if m.store != nil {
		if err := m.store.InsertPoints(ctx, points); err != nil {
			return fmt.Errorf("ingest points: %w", err)
		}
	}

	for i := range points {
		p := &points[i]
		state := m.states.getOrCreate(p.SeriesID)
		if m.store != nil {
			if state.Estimator.Samples() == 0 {
				if err := m.store.EnsureSeries(ctx, p.SeriesID, p.SeriesID, models.SourceIngest, p.Timestamp); err != nil {
					m.logger.Warn("failed to register series", zap.Error(err))
				}
			}
			if err := m.store.TouchSeries(ctx, p.SeriesID, p.Timestamp); err != nil {
				m.logger.Warn("failed to touch series", zap.Error(err))
			}
		}
		m.analyzeSample(state, p)
	}
	return nil
}
