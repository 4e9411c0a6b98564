package drift

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/driftscope/driftscope/internal/drift/trend"
	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/cusum"
	"github.com/driftscope/driftscope/pkg/models"
	"github.com/driftscope/driftscope/pkg/plugin"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/series", Handler: m.handleListSeries},
		{Method: "GET", Path: "/series/{id}", Handler: m.handleGetSeries},
		{Method: "GET", Path: "/series/{id}/points", Handler: m.handleGetPoints},
		{Method: "POST", Path: "/series/{id}/points", Handler: m.handleAppendPoints},
		{Method: "GET", Path: "/series/{id}/baseline", Handler: m.handleGetBaseline},
		{Method: "POST", Path: "/series/{id}/detect", Handler: m.handleDetect},
		{Method: "GET", Path: "/series/{id}/trend", Handler: m.handleGetTrend},
		{Method: "GET", Path: "/anomalies", Handler: m.handleListAnomalies},
		{Method: "POST", Path: "/anomalies/{id}/resolve", Handler: m.handleResolveAnomaly},
		{Method: "GET", Path: "/correlations", Handler: m.handleListCorrelations},
	}
}

// handleListSeries returns all tracked series.
//
//	@Summary		List series
//	@Description	Returns all tracked series with their learning status.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {array} models.Series
//	@Failure		500 {object} map[string]any
//	@Router			/drift/series [get]
func (m *Module) handleListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := m.store.ListSeries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list series")
		return
	}
	if series == nil {
		series = []models.Series{}
	}
	writeJSON(w, http.StatusOK, series)
}

// handleGetSeries returns one series by ID.
//
//	@Summary		Get series
//	@Description	Returns a single tracked series.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Success		200 {object} models.Series
//	@Failure		404 {object} map[string]any
//	@Router			/drift/series/{id} [get]
func (m *Module) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	series, err := m.store.GetSeries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if series == nil {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// handleGetPoints returns points for a series, optionally reaching into
// the compressed archive.
//
//	@Summary		Get points
//	@Description	Returns points for a series. Without since, returns the most recent points. With include_archived, merges points restored from archive chunks.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Param			since query string false "RFC3339 lower bound"
//	@Param			limit query int false "Maximum recent points" default(500)
//	@Param			include_archived query bool false "Merge archived points"
//	@Success		200 {array} models.SeriesPoint
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/drift/series/{id}/points [get]
func (m *Module) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	series, err := m.store.GetSeries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if series == nil {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}

	q := r.URL.Query()
	includeArchived := q.Get("include_archived") == "true"

	var since time.Time
	sinceSet := false
	if s := q.Get("since"); s != "" {
		since, err = time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		sinceSet = true
	}

	var points []models.SeriesPoint
	if sinceSet || includeArchived {
		// Zero since with include_archived means full history.
		points, err = m.store.GetPointWindow(r.Context(), id, since)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get points")
			return
		}
		if includeArchived {
			archived, archErr := m.store.GetArchivedPoints(r.Context(), id, since)
			if archErr != nil {
				writeError(w, http.StatusInternalServerError, "failed to restore archived points")
				return
			}
			points = append(archived, points...)
			sort.SliceStable(points, func(i, j int) bool {
				return points[i].Timestamp.Before(points[j].Timestamp)
			})
		}
	} else {
		points, err = m.store.GetRecentPoints(r.Context(), id, parseLimit(r, 500))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get points")
			return
		}
	}

	if points == nil {
		points = []models.SeriesPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// handleAppendPoints ingests a batch of points for a series. Each point
// runs through the full detection pipeline.
//
//	@Summary		Append points
//	@Description	Appends a batch of points to a series and runs them through the detectors.
//	@Tags			drift
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Param			points body []models.SeriesPoint true "Points to append (series_id is taken from the path)"
//	@Success		201 {object} map[string]any
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/drift/series/{id}/points [post]
func (m *Module) handleAppendPoints(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var points []models.SeriesPoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(points) == 0 {
		writeError(w, http.StatusBadRequest, "at least one point is required")
		return
	}
	for i := range points {
		points[i].SeriesID = id
	}

	if err := m.Ingest(r.Context(), points); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to ingest points")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"inserted": len(points)})
}

// handleGetBaseline returns the learned baseline for a series.
//
//	@Summary		Get baseline
//	@Description	Returns the current baseline for a series. The in-memory state wins over the last persisted snapshot.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Success		200 {object} analytics.Baseline
//	@Failure		404 {object} map[string]any
//	@Router			/drift/series/{id}/baseline [get]
func (m *Module) handleGetBaseline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if state, ok := m.states.lookup(id); ok {
		writeJSON(w, http.StatusOK, m.baselineFromState(id, state))
		return
	}

	b, err := m.store.GetBaseline(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get baseline")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "no baseline learned yet")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type detectRequest struct {
	Shift     float64  `json:"shift"`
	Threshold float64  `json:"threshold"`
	Mean      *float64 `json:"mean,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

type detectResponse struct {
	SeriesID  string        `json:"series_id"`
	Mean      float64       `json:"mean"`
	Shift     float64       `json:"shift"`
	Threshold float64       `json:"threshold"`
	Samples   int           `json:"samples"`
	Steps     []cusum.Step  `json:"steps"`
	Anomalies []cusum.Point `json:"anomalies"`
}

// handleDetect runs a one-shot CUSUM pass over a series' recent points
// with caller-supplied parameters. Useful for tuning shift and threshold
// before changing the streaming detector's config.
//
//	@Summary		One-shot CUSUM detection
//	@Description	Runs a CUSUM pass over recent points with the given shift and threshold. Mean defaults to the series baseline when omitted.
//	@Tags			drift
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Param			request body detectRequest true "Detection parameters"
//	@Success		200 {object} detectResponse
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/drift/series/{id}/detect [post]
func (m *Module) handleDetect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	series, err := m.store.GetSeries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if series == nil {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}

	mean, ok := m.resolveMean(r, id, req.Mean)
	if !ok {
		writeError(w, http.StatusBadRequest, "no baseline for series; supply mean explicitly")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 500
	}
	points, err := m.store.GetRecentPoints(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get points")
		return
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	result, err := cusum.Detect(values, mean, req.Shift, req.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, detectResponse{
		SeriesID:  id,
		Mean:      mean,
		Shift:     req.Shift,
		Threshold: req.Threshold,
		Samples:   len(values),
		Steps:     result.Steps,
		Anomalies: result.Anomalies,
	})
}

// resolveMean picks the process target for a one-shot detection: the
// caller's explicit mean, else the live baseline, else the stored one.
func (m *Module) resolveMean(r *http.Request, seriesID string, explicit *float64) (float64, bool) {
	if explicit != nil {
		return *explicit, true
	}
	if state, ok := m.states.lookup(seriesID); ok && state.Estimator.Samples() > 0 {
		return state.Estimator.Mean(), true
	}
	if b, err := m.store.GetBaseline(r.Context(), seriesID); err == nil && b != nil {
		return b.Mean, true
	}
	return 0, false
}

// handleGetTrend fits a linear trend over a series' recent window.
//
//	@Summary		Get trend
//	@Description	Fits a least-squares line over the series' recent points. With limit, projects when the trend crosses that value.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Series ID"
//	@Param			limit query number false "Limit value for time-to-limit projection"
//	@Param			window query string false "Fit window as a Go duration" default(24h)
//	@Success		200 {object} analytics.TrendEstimate
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/drift/series/{id}/trend [get]
func (m *Module) handleGetTrend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	series, err := m.store.GetSeries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if series == nil {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}

	q := r.URL.Query()
	window := m.cfg.TrendWindow
	if s := q.Get("window"); s != "" {
		window, err = time.ParseDuration(s)
		if err != nil || window <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
	}

	var limit float64
	hasLimit := false
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		hasLimit = true
	}

	points, err := m.store.GetPointWindow(r.Context(), id, time.Now().Add(-window))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get points")
		return
	}
	if len(points) < 2 {
		writeError(w, http.StatusNotFound, "not enough points to fit a trend")
		return
	}

	timestamps := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		timestamps[i] = p.Timestamp
		values[i] = p.Value
	}

	est := trend.Fit(trend.HoursFromStart(timestamps), values, limit)
	if est == nil {
		writeError(w, http.StatusNotFound, "not enough points to fit a trend")
		return
	}

	t := analytics.TrendEstimate{
		SeriesID:    id,
		Slope:       est.Slope,
		Intercept:   est.Intercept,
		R2:          est.R2,
		Predicted:   est.Predicted,
		GeneratedAt: time.Now(),
	}
	if hasLimit {
		t.Limit = limit
		t.TimeToLimit = est.TimeToLimit
	}
	writeJSON(w, http.StatusOK, t)
}

// handleListAnomalies returns detected anomalies with optional filters.
//
//	@Summary		List anomalies
//	@Description	Returns detected anomalies, newest first.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			series_id query string false "Filter by series"
//	@Param			since query string false "RFC3339 lower bound on detection time"
//	@Param			severity query string false "Filter by severity" Enums(info, warning, critical)
//	@Param			limit query int false "Maximum results" default(50)
//	@Success		200 {array} analytics.Anomaly
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/drift/anomalies [get]
func (m *Module) handleListAnomalies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := AnomalyFilter{
		SeriesID: q.Get("series_id"),
		Severity: q.Get("severity"),
		Limit:    parseLimit(r, 50),
	}
	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = since
	}

	anomalies, err := m.store.ListAnomalies(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list anomalies")
		return
	}
	if anomalies == nil {
		anomalies = []analytics.Anomaly{}
	}
	writeJSON(w, http.StatusOK, anomalies)
}

// handleResolveAnomaly marks an anomaly as resolved.
//
//	@Summary		Resolve anomaly
//	@Description	Marks an anomaly as resolved and publishes the resolution on the bus.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Anomaly ID"
//	@Success		200 {object} AnomalyResolution
//	@Failure		404 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/drift/anomalies/{id}/resolve [post]
func (m *Module) handleResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	resolved, err := m.store.ResolveAnomaly(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve anomaly")
		return
	}
	if !resolved {
		writeError(w, http.StatusNotFound, "anomaly not found")
		return
	}

	res := AnomalyResolution{ID: id, ResolvedAt: time.Now()}
	if m.bus != nil {
		m.bus.PublishAsync(r.Context(), plugin.Event{
			Topic:   TopicAnomalyResolved,
			Source:  "drift",
			Payload: res,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListCorrelations returns active alert correlation groups.
//
//	@Summary		List correlations
//	@Description	Returns unresolved cross-series correlation groups, newest first.
//	@Tags			drift
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {array} analytics.AlertGroup
//	@Failure		500 {object} map[string]any
//	@Router			/drift/correlations [get]
func (m *Module) handleListCorrelations(w http.ResponseWriter, r *http.Request) {
	groups, err := m.store.ListActiveCorrelations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list correlations")
		return
	}
	if groups == nil {
		groups = []analytics.AlertGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	title := http.StatusText(status)
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://driftscope.dev/problems/" + slug,
		"title":  title,
		"status": status,
		"detail": detail,
	})
}

func parseLimit(r *http.Request, defaultLimit int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 10000 {
			return n
		}
	}
	return defaultLimit
}
