package drift

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/models"
)

func TestHandleListSeries_Empty(t *testing.T) {
	m, _ := testModule(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/series", http.NoBody)
	w := httptest.NewRecorder()

	m.handleListSeries(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got []models.Series
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty array, got %d items", len(got))
	}
}

func TestHandleGetSeries_NotFound(t *testing.T) {
	m, _ := testModule(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/series/nope", http.NoBody)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	m.handleGetSeries(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}
}

func TestHandleAppendPoints_ThenGet(t *testing.T) {
	m, _ := testModule(t, nil)

	body := `[{"value":12.5},{"value":13.1}]`
	req := httptest.NewRequest(http.MethodPost, "/series/api.latency/points", strings.NewReader(body))
	req.SetPathValue("id", "api.latency")
	w := httptest.NewRecorder()

	m.handleAppendPoints(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created map[string]any
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created["inserted"] != float64(2) {
		t.Errorf("inserted = %v, want 2", created["inserted"])
	}

	getReq := httptest.NewRequest(http.MethodGet, "/series/api.latency/points", http.NoBody)
	getReq.SetPathValue("id", "api.latency")
	getW := httptest.NewRecorder()

	m.handleGetPoints(getW, getReq)

	if getW.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", getW.Code, http.StatusOK)
	}
	var points []models.SeriesPoint
	if err := json.NewDecoder(getW.Body).Decode(&points); err != nil {
		t.Fatalf("decode points: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Value != 12.5 || points[1].Value != 13.1 {
		t.Errorf("points = %v, want values 12.5 then 13.1", points)
	}
}

func TestHandleAppendPoints_BadInput(t *testing.T) {
	m, _ := testModule(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty batch", `[]`},
		{"object instead of array", `{"value": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/series/s1/points", strings.NewReader(tt.body))
			req.SetPathValue("id", "s1")
			w := httptest.NewRecorder()

			m.handleAppendPoints(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleGetPoints_UnknownSeries(t *testing.T) {
	m, _ := testModule(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/series/nope/points", http.NoBody)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	m.handleGetPoints(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleGetPoints_IncludeArchived(t *testing.T) {
	m, s := testModule(t, nil)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.EnsureSeries(ctx, "s1", "s1", models.SourceIngest, now); err != nil {
		t.Fatalf("EnsureSeries: %v", err)
	}

	// One archived chunk and one live point.
	archived := []models.SeriesPoint{
		{SeriesID: "s1", Timestamp: now.Add(-72 * time.Hour), Value: 1},
		{SeriesID: "s1", Timestamp: now.Add(-71 * time.Hour), Value: 2},
	}
	blob, err := encodePoints(archived)
	if err != nil {
		t.Fatalf("encodePoints: %v", err)
	}
	if err := s.InsertArchive(ctx, "s1", archived[0].Timestamp, archived[1].Timestamp, 2, blob); err != nil {
		t.Fatalf("InsertArchive: %v", err)
	}
	if err := s.InsertPoint(ctx, &models.SeriesPoint{SeriesID: "s1", Timestamp: now.Add(-time.Hour), Value: 3}); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/series/s1/points?include_archived=true", http.NoBody)
	req.SetPathValue("id", "s1")
	w := httptest.NewRecorder()

	m.handleGetPoints(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var points []models.SeriesPoint
	if err := json.NewDecoder(w.Body).Decode(&points); err != nil {
		t.Fatalf("decode points: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 merged points, got %d", len(points))
	}
	if points[0].Value != 1 || points[2].Value != 3 {
		t.Errorf("points = %v, want archive first then live", points)
	}
}

func TestHandleGetBaseline(t *testing.T) {
	m, _ := testModule(t, map[string]any{"min_samples": 10})

	// Unknown series: no baseline at all.
	req := httptest.NewRequest(http.MethodGet, "/series/nope/baseline", http.NoBody)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	m.handleGetBaseline(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// After enough samples the live baseline is served.
	feedAlternating(m, "s1", 50, 15, time.Now().Add(-time.Hour))

	req = httptest.NewRequest(http.MethodGet, "/series/s1/baseline", http.NoBody)
	req.SetPathValue("id", "s1")
	w = httptest.NewRecorder()
	m.handleGetBaseline(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var b analytics.Baseline
	if err := json.NewDecoder(w.Body).Decode(&b); err != nil {
		t.Fatalf("decode baseline: %v", err)
	}
	if !b.Stable {
		t.Error("baseline not stable after 15 samples with min_samples=10")
	}
	if b.Mean < 49 || b.Mean > 51 {
		t.Errorf("Mean = %f, want near 50", b.Mean)
	}
	if b.Samples != 15 {
		t.Errorf("Samples = %d, want 15", b.Samples)
	}
}

func seedDetectSeries(t *testing.T, s *DriftStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	if err := s.EnsureSeries(ctx, "s1", "s1", models.SourceIngest, now); err != nil {
		t.Fatalf("EnsureSeries: %v", err)
	}

	points := make([]models.SeriesPoint, 0, 30)
	for i := 0; i < 20; i++ {
		points = append(points, models.SeriesPoint{
			SeriesID:  "s1",
			Timestamp: now.Add(time.Duration(i-30) * time.Minute),
			Value:     10.0,
		})
	}
	for i := 0; i < 10; i++ {
		points = append(points, models.SeriesPoint{
			SeriesID:  "s1",
			Timestamp: now.Add(time.Duration(i-10) * time.Minute),
			Value:     20.0,
		})
	}
	if err := s.InsertPoints(ctx, points); err != nil {
		t.Fatalf("InsertPoints: %v", err)
	}
}

func TestHandleDetect(t *testing.T) {
	m, s := testModule(t, nil)
	seedDetectSeries(t, s)

	body := `{"shift": 0.5, "threshold": 4, "mean": 10}`
	req := httptest.NewRequest(http.MethodPost, "/series/s1/detect", strings.NewReader(body))
	req.SetPathValue("id", "s1")
	w := httptest.NewRecorder()

	m.handleDetect(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp detectResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Samples != 30 {
		t.Errorf("Samples = %d, want 30", resp.Samples)
	}
	if len(resp.Steps) != 30 {
		t.Errorf("len(Steps) = %d, want 30", len(resp.Steps))
	}
	// The level shift from 10 to 20 blows through the threshold on the
	// first shifted sample, so all ten are flagged.
	if len(resp.Anomalies) != 10 {
		t.Errorf("len(Anomalies) = %d, want 10", len(resp.Anomalies))
	}
	if resp.Mean != 10 {
		t.Errorf("Mean = %f, want 10", resp.Mean)
	}
}

func TestHandleDetect_MeanDefaultsToBaseline(t *testing.T) {
	m, s := testModule(t, nil)
	seedDetectSeries(t, s)
	ctx := context.Background()

	// Without a stored baseline and no explicit mean there is nothing to
	// anchor the chart to.
	body := `{"shift": 0.5, "threshold": 4}`
	req := httptest.NewRequest(http.MethodPost, "/series/s1/detect", strings.NewReader(body))
	req.SetPathValue("id", "s1")
	w := httptest.NewRecorder()
	m.handleDetect(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d without baseline", w.Code, http.StatusBadRequest)
	}

	if err := s.UpsertBaseline(ctx, &analytics.Baseline{
		SeriesID: "s1", Algorithm: "ewma", Mean: 10, StdDev: 0.5,
		Samples: 100, Stable: true, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertBaseline: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/series/s1/detect", strings.NewReader(body))
	req.SetPathValue("id", "s1")
	w = httptest.NewRecorder()
	m.handleDetect(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp detectResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mean != 10 {
		t.Errorf("Mean = %f, want stored baseline mean 10", resp.Mean)
	}
}

func TestHandleDetect_Errors(t *testing.T) {
	m, s := testModule(t, nil)
	seedDetectSeries(t, s)

	tests := []struct {
		name     string
		seriesID string
		body     string
		want     int
	}{
		{"unknown series", "nope", `{"shift": 0.5, "threshold": 4, "mean": 10}`, http.StatusNotFound},
		{"negative shift", "s1", `{"shift": -1, "threshold": 4, "mean": 10}`, http.StatusBadRequest},
		{"negative threshold", "s1", `{"shift": 0.5, "threshold": -4, "mean": 10}`, http.StatusBadRequest},
		{"bad body", "s1", `{broken`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/series/"+tt.seriesID+"/detect", strings.NewReader(tt.body))
			req.SetPathValue("id", tt.seriesID)
			w := httptest.NewRecorder()

			m.handleDetect(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleGetTrend(t *testing.T) {
	m, s := testModule(t, nil)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	if err := s.EnsureSeries(ctx, "disk", "disk", models.SourceIngest, now); err != nil {
		t.Fatalf("EnsureSeries: %v", err)
	}
	points := make([]models.SeriesPoint, 24)
	for i := range points {
		points[i] = models.SeriesPoint{
			SeriesID:  "disk",
			Timestamp: now.Add(time.Duration(i-24) * 5 * time.Minute),
			Value:     float64(i),
		}
	}
	if err := s.InsertPoints(ctx, points); err != nil {
		t.Fatalf("InsertPoints: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/series/disk/trend?limit=100", http.NoBody)
	req.SetPathValue("id", "disk")
	w := httptest.NewRecorder()

	m.handleGetTrend(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var est analytics.TrendEstimate
	if err := json.NewDecoder(w.Body).Decode(&est); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// One unit per 5 minutes is 12 units per hour.
	if est.Slope < 11.9 || est.Slope > 12.1 {
		t.Errorf("Slope = %f, want ~12", est.Slope)
	}
	if est.R2 < 0.99 {
		t.Errorf("R2 = %f, want ~1 for a perfect ramp", est.R2)
	}
	if est.Limit != 100 {
		t.Errorf("Limit = %f, want 100", est.Limit)
	}
	if est.TimeToLimit == nil {
		t.Error("TimeToLimit = nil, want projection for rising trend below limit")
	}
}

func TestHandleGetTrend_Errors(t *testing.T) {
	m, s := testModule(t, nil)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	if err := s.EnsureSeries(ctx, "sparse", "sparse", models.SourceIngest, now); err != nil {
		t.Fatalf("EnsureSeries: %v", err)
	}
	if err := s.InsertPoint(ctx, &models.SeriesPoint{SeriesID: "sparse", Timestamp: now, Value: 1}); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}

	tests := []struct {
		name     string
		seriesID string
		query    string
		want     int
	}{
		{"unknown series", "nope", "", http.StatusNotFound},
		{"too few points", "sparse", "", http.StatusNotFound},
		{"bad window", "sparse", "?window=soon", http.StatusBadRequest},
		{"bad limit", "sparse", "?limit=high", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/series/"+tt.seriesID+"/trend"+tt.query, http.NoBody)
			req.SetPathValue("id", tt.seriesID)
			w := httptest.NewRecorder()

			m.handleGetTrend(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleListAnomalies_WithFilters(t *testing.T) {
	m, s := testModule(t, nil)

	now := time.Now().Truncate(time.Second)
	insertAnomaly(t, s, "a1", "s1", "warning", "chart", now.Add(-time.Hour))
	insertAnomaly(t, s, "a2", "s2", "critical", "cusum", now)

	req := httptest.NewRequest(http.MethodGet, "/anomalies?severity=critical", http.NoBody)
	w := httptest.NewRecorder()

	m.handleListAnomalies(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []analytics.Anomaly
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a2" {
		t.Errorf("filtered anomalies = %v, want [a2]", got)
	}

	badReq := httptest.NewRequest(http.MethodGet, "/anomalies?since=yesterday", http.NoBody)
	badW := httptest.NewRecorder()
	m.handleListAnomalies(badW, badReq)
	if badW.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d for bad since", badW.Code, http.StatusBadRequest)
	}
}

func TestHandleResolveAnomaly(t *testing.T) {
	m, s := testModule(t, nil)

	now := time.Now().Truncate(time.Second)
	insertAnomaly(t, s, "a1", "s1", "warning", "chart", now)

	req := httptest.NewRequest(http.MethodPost, "/anomalies/a1/resolve", http.NoBody)
	req.SetPathValue("id", "a1")
	w := httptest.NewRecorder()

	m.handleResolveAnomaly(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var res AnomalyResolution
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.ID != "a1" {
		t.Errorf("ID = %q, want a1", res.ID)
	}

	missing := httptest.NewRequest(http.MethodPost, "/anomalies/nope/resolve", http.NoBody)
	missing.SetPathValue("id", "nope")
	missingW := httptest.NewRecorder()
	m.handleResolveAnomaly(missingW, missing)
	if missingW.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d for missing anomaly", missingW.Code, http.StatusNotFound)
	}
}

func TestHandleListCorrelations_Empty(t *testing.T) {
	m, _ := testModule(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/correlations", http.NoBody)
	w := httptest.NewRecorder()

	m.handleListCorrelations(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []analytics.AlertGroup
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty array, got %d items", len(got))
	}
}

func TestRoutes_Complete(t *testing.T) {
	m := New()
	routes := m.Routes()
	if len(routes) != 10 {
		t.Fatalf("Routes() returned %d routes, want 10", len(routes))
	}
	for _, r := range routes {
		if r.Handler == nil {
			t.Errorf("route %s %s has nil handler", r.Method, r.Path)
		}
		if r.Method == "" || r.Path == "" {
			t.Errorf("route %+v has empty method or path", r)
		}
	}
}
