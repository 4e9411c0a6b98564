package bench

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/rankeval"
	"github.com/driftscope/driftscope/pkg/roles"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/runs", Handler: m.handleCreateRun},
		{Method: "GET", Path: "/runs", Handler: m.handleListRuns},
		{Method: "GET", Path: "/runs/{id}", Handler: m.handleGetRun},
		{Method: "GET", Path: "/runs/{id}/curve", Handler: m.handleGetCurve},
		{Method: "DELETE", Path: "/runs/{id}", Handler: m.handleDeleteRun},
		{Method: "GET", Path: "/scorers", Handler: m.handleListScorers},
	}
}

// handleCreateRun grades a labeled score set and persists the run.
//
//	@Summary		Create evaluation run
//	@Description	Grades a labeled score set. Supply scores directly, or name a registered scorer plus the raw values to score.
//	@Tags			bench
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request body roles.EvaluationRequest true "Evaluation request"
//	@Success		201 {object} analytics.EvaluationRun
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/bench/runs [post]
func (m *Module) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req roles.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	run, err := m.Evaluate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, rankeval.ErrInvalidArgument),
			errors.Is(err, rankeval.ErrUndefined),
			errors.Is(err, errUnknownScorer):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to evaluate")
		}
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// handleListRuns returns completed runs, newest first.
//
//	@Summary		List runs
//	@Description	Returns completed evaluation runs, newest first.
//	@Tags			bench
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit query int false "Maximum results" default(20)
//	@Success		200 {array} analytics.EvaluationRun
//	@Failure		500 {object} map[string]any
//	@Router			/bench/runs [get]
func (m *Module) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := m.store.ListRuns(r.Context(), parseLimit(r, 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []analytics.EvaluationRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns a single run by ID.
//
//	@Summary		Get run
//	@Description	Returns a single evaluation run.
//	@Tags			bench
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Run ID"
//	@Success		200 {object} analytics.EvaluationRun
//	@Failure		404 {object} map[string]any
//	@Router			/bench/runs/{id} [get]
func (m *Module) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := m.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleGetCurve returns a run's precision/cost curve.
//
//	@Summary		Get run curve
//	@Description	Returns the per-rank precision and expected-cost curve for a run.
//	@Tags			bench
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Run ID"
//	@Success		200 {array} analytics.PrecisionPoint
//	@Failure		404 {object} map[string]any
//	@Router			/bench/runs/{id}/curve [get]
func (m *Module) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := m.store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	curve, err := m.store.GetCurve(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get curve")
		return
	}
	if curve == nil {
		curve = []analytics.PrecisionPoint{}
	}
	writeJSON(w, http.StatusOK, curve)
}

// handleDeleteRun removes a run and its curve.
//
//	@Summary		Delete run
//	@Description	Deletes an evaluation run and its curve rows.
//	@Tags			bench
//	@Security		BearerAuth
//	@Param			id path string true "Run ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/bench/runs/{id} [delete]
func (m *Module) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	deleted, err := m.store.DeleteRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListScorers returns scorers offered by registered providers.
//
//	@Summary		List scorers
//	@Description	Returns the scorers available for server-side scoring, with their polarity.
//	@Tags			bench
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {array} analytics.ScorerInfo
//	@Router			/bench/scorers [get]
func (m *Module) handleListScorers(w http.ResponseWriter, _ *http.Request) {
	infos := m.scorerInfos()
	if infos == nil {
		infos = []analytics.ScorerInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
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
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultLimit
}
