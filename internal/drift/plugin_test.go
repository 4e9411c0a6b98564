package drift

import (
	"context"
	"testing"
	"time"

	"github.com/driftscope/driftscope/internal/config"
	"github.com/driftscope/driftscope/internal/event"
	"github.com/driftscope/driftscope/internal/store"
	"github.com/driftscope/driftscope/pkg/models"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/plugin/plugintest"
	"github.com/driftscope/driftscope/pkg/roles"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func TestPluginContract(t *testing.T) {
	plugintest.TestPluginContract(t, func() plugin.Plugin { return New() })
}

// testModule builds an initialized and started module backed by an
// in-memory store and a real event bus. Detection thresholds are left at
// their defaults unless overridden via the settings map.
func testModule(t *testing.T, settings map[string]any) (*Module, *DriftStore) {
	t.Helper()

	v := viper.New()
	// Keep Holt-Winters out of the way unless a test opts in: two full
	// seasons would otherwise activate it mid-test.
	v.Set("hw_season_len", 1000)
	for k, val := range settings {
		v.Set(k, val)
	}

	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := New()
	err = m.Init(context.Background(), plugin.Dependencies{
		Logger: zap.NewNop(),
		Config: config.New(v),
		Store:  db,
		Bus:    event.NewBus(zap.NewNop()),
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { m.Stop(context.Background()) })

	return m, m.store
}

func TestInit_WithConfig(t *testing.T) {
	v := viper.New()
	v.Set("baseline", "rolling")
	v.Set("min_samples", 50)
	v.Set("cusum_threshold", 8.0)
	v.Set("staleness_window", "2h")

	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := New()
	err = m.Init(context.Background(), plugin.Dependencies{
		Logger: zap.NewNop(),
		Config: config.New(v),
		Store:  db,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if m.cfg.Baseline != "rolling" {
		t.Errorf("cfg.Baseline = %q, want %q", m.cfg.Baseline, "rolling")
	}
	if m.cfg.MinSamples != 50 {
		t.Errorf("cfg.MinSamples = %d, want 50", m.cfg.MinSamples)
	}
	if m.cfg.CUSUMThreshold != 8.0 {
		t.Errorf("cfg.CUSUMThreshold = %f, want 8.0", m.cfg.CUSUMThreshold)
	}
	if m.cfg.StalenessWindow != 2*time.Hour {
		t.Errorf("cfg.StalenessWindow = %v, want 2h", m.cfg.StalenessWindow)
	}
}

func TestInit_NilConfig(t *testing.T) {
	m := New()
	err := m.Init(context.Background(), plugin.Dependencies{
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("Init() with nil config error = %v", err)
	}

	defaults := DefaultConfig()
	if m.cfg.Baseline != defaults.Baseline {
		t.Errorf("cfg.Baseline = %q, want default %q", m.cfg.Baseline, defaults.Baseline)
	}
	if m.cfg.ChartLimit != defaults.ChartLimit {
		t.Errorf("cfg.ChartLimit = %f, want default %f", m.cfg.ChartLimit, defaults.ChartLimit)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DriftConfig)
		wantErr bool
	}{
		{"defaults", func(c *DriftConfig) {}, false},
		{"unknown baseline", func(c *DriftConfig) { c.Baseline = "kalman" }, true},
		{"zero alpha", func(c *DriftConfig) { c.EWMAAlpha = 0 }, true},
		{"alpha above one", func(c *DriftConfig) { c.EWMAAlpha = 1.5 }, true},
		{"zero min samples", func(c *DriftConfig) { c.MinSamples = 0 }, true},
		{"zero chart limit", func(c *DriftConfig) { c.ChartLimit = 0 }, true},
		{"negative shift", func(c *DriftConfig) { c.CUSUMShift = -1 }, true},
		{"zero threshold", func(c *DriftConfig) { c.CUSUMThreshold = 0 }, true},
		{"confidence out of range", func(c *DriftConfig) { c.HWConfidence = 1.0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.cfg = DefaultConfig()
			tt.mutate(&m.cfg)
			err := m.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInfo_HasCorrectRoles(t *testing.T) {
	m := New()
	info := m.Info()

	if info.Name != "drift" {
		t.Errorf("Info().Name = %q, want %q", info.Name, "drift")
	}
	if info.Required {
		t.Error("Info().Required = true, want false")
	}

	found := false
	for _, r := range info.Roles {
		if r == roles.RoleDetection {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Info().Roles = %v, want to contain %q", info.Roles, roles.RoleDetection)
	}
}

func TestHealth_ReportsStatus(t *testing.T) {
	m := New()
	err := m.Init(context.Background(), plugin.Dependencies{
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	status := m.Health(context.Background())
	if status.Status != "healthy" {
		t.Errorf("Health().Status = %q, want %q", status.Status, "healthy")
	}
	if _, ok := status.Details["series_tracked"]; !ok {
		t.Error("Health().Details missing key \"series_tracked\"")
	}
}

func TestSubscriptions_ReturnsTopics(t *testing.T) {
	m := New()

	subs := m.Subscriptions()
	if len(subs) != 2 {
		t.Fatalf("Subscriptions() returned %d, want 2", len(subs))
	}

	expected := map[string]bool{
		TopicProbeSample: false,
		TopicSeedSample:  false,
	}
	for _, s := range subs {
		if _, ok := expected[s.Topic]; !ok {
			t.Errorf("unexpected subscription topic: %q", s.Topic)
		}
		expected[s.Topic] = true
		if s.Handler == nil {
			t.Errorf("subscription for %q has nil handler", s.Topic)
		}
	}
	for topic, seen := range expected {
		if !seen {
			t.Errorf("missing subscription for topic %q", topic)
		}
	}
}

func TestDetectionProvider_EmptyResults(t *testing.T) {
	m, _ := testModule(t, nil)
	ctx := context.Background()

	anomalies, err := m.RecentAnomalies(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("RecentAnomalies() error = %v", err)
	}
	if anomalies != nil {
		t.Errorf("RecentAnomalies() = %v, want nil (empty)", anomalies)
	}

	b, err := m.BaselineFor(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("BaselineFor() error = %v", err)
	}
	if b != nil {
		t.Errorf("BaselineFor() = %v, want nil while unknown", b)
	}
}

// feedAlternating drives the detection pipeline with a tight alternating
// pattern around a center value so the baseline learns a small nonzero
// spread.
func feedAlternating(m *Module, seriesID string, center float64, n int, start time.Time) time.Time {
	ts := start
	for i := 0; i < n; i++ {
		v := center + 1.0
		if i%2 == 1 {
			v = center - 1.0
		}
		m.processSample(&models.SeriesPoint{SeriesID: seriesID, Timestamp: ts, Value: v}, models.SourceProbe)
		ts = ts.Add(time.Minute)
	}
	return ts
}

func TestProcessSample_LearningGateHoldsFire(t *testing.T) {
	m, s := testModule(t, map[string]any{"min_samples": 30})

	start := time.Now().Add(-2 * time.Hour)
	ts := feedAlternating(m, "s1", 50, 10, start)
	// A wild outlier during the learning period must not be flagged.
	m.processSample(&models.SeriesPoint{SeriesID: "s1", Timestamp: ts, Value: 500}, models.SourceProbe)

	anomalies, err := s.ListAnomalies(context.Background(), AnomalyFilter{})
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(anomalies) != 0 {
		t.Errorf("expected no anomalies during learning, got %d", len(anomalies))
	}

	series, err := s.GetSeries(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series == nil {
		t.Fatal("series was not registered")
	}
	if series.Status != models.SeriesStatusLearning {
		t.Errorf("Status = %q, want learning", series.Status)
	}
}

func TestProcessSample_StableTransitionAndDetection(t *testing.T) {
	m, s := testModule(t, map[string]any{"min_samples": 30})

	stableEvents := make(chan plugin.Event, 1)
	m.bus.Subscribe(TopicBaselineStable, func(_ context.Context, e plugin.Event) {
		select {
		case stableEvents <- e:
		default:
		}
	})

	start := time.Now().Add(-2 * time.Hour)
	ts := feedAlternating(m, "s1", 50, 40, start)

	select {
	case e := <-stableEvents:
		if e.Source != "drift" {
			t.Errorf("stable event source = %q, want drift", e.Source)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no baseline stable event published")
	}

	series, err := s.GetSeries(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series.Status != models.SeriesStatusActive {
		t.Errorf("Status = %q, want active", series.Status)
	}

	b, err := m.BaselineFor(context.Background(), "s1")
	if err != nil {
		t.Fatalf("BaselineFor: %v", err)
	}
	if b == nil {
		t.Fatal("BaselineFor returned nil for stable series")
	}
	if b.Mean < 49 || b.Mean > 51 {
		t.Errorf("baseline mean = %f, want near 50", b.Mean)
	}
	if !b.Stable {
		t.Error("baseline not marked stable")
	}

	// Now a hard spike: the control chart must flag it, and the spike is
	// large enough that the CUSUM sum jumps past its threshold too.
	m.processSample(&models.SeriesPoint{SeriesID: "s1", Timestamp: ts, Value: 90}, models.SourceProbe)

	anomalies, err := s.ListAnomalies(context.Background(), AnomalyFilter{SeriesID: "s1"})
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(anomalies) == 0 {
		t.Fatal("expected anomalies after spike, got none")
	}

	types := make(map[string]string, len(anomalies))
	for _, a := range anomalies {
		types[a.Type] = a.Severity
	}
	if sev, ok := types["chart"]; !ok {
		t.Errorf("anomaly types = %v, want a chart breach", types)
	} else if sev != "critical" {
		t.Errorf("chart severity = %q, want critical for a far outlier", sev)
	}
	if _, ok := types["cusum"]; !ok {
		t.Errorf("anomaly types = %v, want a cusum change point", types)
	}
}

func TestProcessSample_StaleGapResetsCusum(t *testing.T) {
	m, _ := testModule(t, map[string]any{
		"min_samples":      30,
		"staleness_window": "1h",
		"chart_limit":      1000.0, // Keep the chart quiet; this test watches CUSUM sums
	})

	start := time.Now().Add(-24 * time.Hour)
	ts := feedAlternating(m, "s1", 50, 40, start)

	// Push the high-side sum up with sustained elevated samples.
	for i := 0; i < 6; i++ {
		m.processSample(&models.SeriesPoint{SeriesID: "s1", Timestamp: ts, Value: 55}, models.SourceProbe)
		ts = ts.Add(time.Minute)
	}

	state, ok := m.states.lookup("s1")
	if !ok {
		t.Fatal("no state for s1")
	}
	highBefore, _ := state.Detector.Sums()
	if highBefore <= 0 {
		t.Fatalf("high sum = %f, want > 0 after sustained shift", highBefore)
	}

	// Resume after a gap longer than the staleness window: the detector
	// must re-arm instead of flagging the first sample back.
	m.processSample(&models.SeriesPoint{SeriesID: "s1", Timestamp: ts.Add(3 * time.Hour), Value: 45}, models.SourceProbe)

	highAfter, _ := state.Detector.Sums()
	if highAfter >= highBefore {
		t.Errorf("high sum = %f after gap, want reset below %f", highAfter, highBefore)
	}
	if highAfter != 0 {
		t.Errorf("high sum = %f after below-mean resume, want 0", highAfter)
	}
}

func TestIngest_BatchStoresAndRegisters(t *testing.T) {
	m, s := testModule(t, nil)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	err := m.Ingest(ctx, []models.SeriesPoint{
		{SeriesID: "api.latency_ms", Timestamp: now.Add(-2 * time.Minute), Value: 12.5},
		{SeriesID: "api.latency_ms", Timestamp: now.Add(-time.Minute), Value: 13.1},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	series, err := s.GetSeries(ctx, "api.latency_ms")
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series == nil {
		t.Fatal("series not registered by ingest")
	}
	if series.Source != models.SourceIngest {
		t.Errorf("Source = %q, want ingest", series.Source)
	}
	if series.PointCount != 2 {
		t.Errorf("PointCount = %d, want 2", series.PointCount)
	}

	points, err := s.GetRecentPoints(ctx, "api.latency_ms", 10)
	if err != nil {
		t.Fatalf("GetRecentPoints: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("stored %d points, want 2", len(points))
	}
}

func TestIngest_RejectsMissingSeriesID(t *testing.T) {
	m, _ := testModule(t, nil)

	err := m.Ingest(context.Background(), []models.SeriesPoint{{Value: 1.0}})
	if err == nil {
		t.Fatal("Ingest() accepted a point without series_id")
	}
}

func TestHandleSample_PayloadShapes(t *testing.T) {
	m, s := testModule(t, nil)
	ctx := context.Background()

	now := time.Now()
	m.handleSample(ctx, plugin.Event{
		Topic:   TopicProbeSample,
		Payload: models.SeriesPoint{SeriesID: "p1", Timestamp: now, Value: 1},
	})
	m.handleSample(ctx, plugin.Event{
		Topic:   TopicProbeSample,
		Payload: &models.SeriesPoint{SeriesID: "p1", Timestamp: now.Add(time.Second), Value: 2},
	})
	m.handleSample(ctx, plugin.Event{
		Topic: TopicSeedSample,
		Payload: []models.SeriesPoint{
			{SeriesID: "p1", Timestamp: now.Add(2 * time.Second), Value: 3},
			{SeriesID: "p1", Timestamp: now.Add(3 * time.Second), Value: 4},
		},
	})
	// Unknown payloads are ignored without panicking.
	m.handleSample(ctx, plugin.Event{Topic: TopicProbeSample, Payload: "garbage"})

	points, err := s.GetRecentPoints(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("GetRecentPoints: %v", err)
	}
	if len(points) != 4 {
		t.Errorf("stored %d points, want 4", len(points))
	}
}

func TestMaintenance_PersistsBaselinesAndArchives(t *testing.T) {
	m, s := testModule(t, map[string]any{
		"min_samples":   10,
		"archive_after": "1h",
	})
	ctx := context.Background()

	// Old points beyond the archive horizon plus fresh ones.
	start := time.Now().Add(-48 * time.Hour)
	feedAlternating(m, "s1", 50, 20, start)
	feedAlternating(m, "s1", 50, 5, time.Now().Add(-10*time.Minute))

	m.runMaintenance()

	b, err := s.GetBaseline(ctx, "s1")
	if err != nil {
		t.Fatalf("GetBaseline: %v", err)
	}
	if b == nil {
		t.Fatal("maintenance did not persist a baseline")
	}
	if !b.Stable {
		t.Error("persisted baseline not stable after 25 samples")
	}

	archives, err := s.ListArchives(ctx, "s1")
	if err != nil {
		t.Fatalf("ListArchives: %v", err)
	}
	if len(archives) != 1 {
		t.Fatalf("expected 1 archive chunk, got %d", len(archives))
	}
	if archives[0].Count != 20 {
		t.Errorf("archived %d points, want 20", archives[0].Count)
	}

	// Live points are gone; the archive still serves them.
	live, err := s.GetPointWindow(ctx, "s1", time.Time{})
	if err != nil {
		t.Fatalf("GetPointWindow: %v", err)
	}
	if len(live) != 5 {
		t.Errorf("expected 5 live points after archival, got %d", len(live))
	}
	restored, err := s.GetArchivedPoints(ctx, "s1", time.Time{})
	if err != nil {
		t.Fatalf("GetArchivedPoints: %v", err)
	}
	if len(restored) != 20 {
		t.Errorf("expected 20 archived points, got %d", len(restored))
	}
}

func TestMaintenance_CorrelatesCrossSeriesAnomalies(t *testing.T) {
	m, s := testModule(t, map[string]any{"correlation_window": "5m"})
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	insertAnomaly(t, s, "a1", "s1", "warning", "chart", now.Add(-2*time.Minute))
	insertAnomaly(t, s, "a2", "s2", "warning", "cusum", now.Add(-90*time.Second))
	insertAnomaly(t, s, "a3", "s3", "critical", "chart", now.Add(-time.Minute))

	m.runMaintenance()

	groups, err := s.ListActiveCorrelations(ctx)
	if err != nil {
		t.Fatalf("ListActiveCorrelations: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 correlation group, got %d", len(groups))
	}
	if groups[0].RootSeries != "s1" {
		t.Errorf("RootSeries = %q, want s1", groups[0].RootSeries)
	}
	if len(groups[0].AnomalyIDs) != 3 {
		t.Errorf("AnomalyIDs = %v, want 3 entries", groups[0].AnomalyIDs)
	}

	// A second cycle must not duplicate the group.
	m.runMaintenance()
	groups, err = s.ListActiveCorrelations(ctx)
	if err != nil {
		t.Fatalf("ListActiveCorrelations (second cycle): %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("expected 1 group after second cycle, got %d", len(groups))
	}
}
